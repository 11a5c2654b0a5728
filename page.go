package launchdash

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/tfkr-ae/launchdash/domain"
)

var funcMap = template.FuncMap{
	"kg": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"selected": func(option, site string) bool {
		return option == site
	},
	"svg": func(b []byte) template.HTML {
		// Only render.SVG output, which escapes every figure string it draws.
		return template.HTML(b)
	},
}

type pageChart struct {
	ID  string
	SVG []byte
}

type pageData struct {
	Layout    *Layout
	Selection domain.SelectionState
	Charts    []pageChart
}

var pageTemplate = template.Must(template.New("page").Funcs(funcMap).Parse(tmplPage))

// renderPage renders the full dashboard page with charts drawn for selection.
func (dash *Dashboard) renderPage(selection domain.SelectionState) ([]byte, error) {
	data := pageData{Layout: dash.Layout, Selection: selection}
	for _, id := range dash.Layout.Graphs {
		_, svg, err := dash.Chart(id, selection)
		if err != nil {
			return nil, err
		}
		data.Charts = append(data.Charts, pageChart{ID: id, SVG: svg})
	}
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "page", data); err != nil {
		return nil, fmt.Errorf("executing page template : %w", err)
	}
	return buf.Bytes(), nil
}

const tmplPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Layout.Title}}</title>
<style>
body { font-family: sans-serif; margin: 0 auto; max-width: 960px; color: #1f2937; }
h1 { text-align: center; color: #503D36; font-size: 40px; }
.controls { margin: 16px 0; }
.slider { display: flex; gap: 12px; align-items: center; }
.chart { margin: 12px 0; }
.marks { display: flex; justify-content: space-between; font-size: 11px; color: #6b7280; }
</style>
</head>
<body>
<h1>{{.Layout.Title}}</h1>
<form id="dashboard" method="get" action="/">
  <div class="controls">
    <input id="site-search" type="search" placeholder="{{.Layout.SiteDropdown.Placeholder}}" autocomplete="off">
    <select id="{{.Layout.SiteDropdown.ID}}" name="site">
      {{- range .Layout.SiteDropdown.Options}}
      <option value="{{.Value}}"{{if selected .Value $.Selection.Site}} selected{{end}}>{{.Label}}</option>
      {{- end}}
    </select>
  </div>
  <div class="chart" id="{{(index .Charts 0).ID}}-container">{{svg (index .Charts 0).SVG}}</div>
  <p>Payload range (Kg):</p>
  {{- with .Layout.PayloadSlider}}
  <div class="slider" id="{{.ID}}">
    <input type="range" name="lo" min="{{kg .Min}}" max="{{kg .Max}}" step="{{kg .Step}}" value="{{kg $.Selection.Payload.Low}}">
    <input type="range" name="hi" min="{{kg .Min}}" max="{{kg .Max}}" step="{{kg .Step}}" value="{{kg $.Selection.Payload.High}}">
  </div>
  <div class="marks">{{range .Marks}}<span>{{.Label}}</span>{{end}}</div>
  {{- end}}
  <noscript><button type="submit">Update</button></noscript>
  <div class="chart" id="{{(index .Charts 1).ID}}-container">{{svg (index .Charts 1).SVG}}</div>
</form>
<script>
(function () {
  var form = document.getElementById("dashboard");
  var dropdown = document.getElementById("site-dropdown");
  var search = document.getElementById("site-search");
  var low = form.elements["lo"], high = form.elements["hi"];

  function inputs() {
    return [
      {id: "site-dropdown", property: "value", value: dropdown.value || null},
      {id: "payload-slider", property: "value", value: [Number(low.value), Number(high.value)]}
    ];
  }

  function update(changed) {
    fetch("/_dash-update-component", {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify({changedPropIds: [changed + ".value"], inputs: inputs()})
    }).then(function (res) {
      if (!res.ok) { throw new Error("update failed: " + res.status); }
      return res.json();
    }).then(function (body) {
      Object.keys(body.response).forEach(function (id) {
        var container = document.getElementById(id + "-container");
        if (container) { container.innerHTML = body.response[id].svg; }
      });
      var params = new URLSearchParams({site: dropdown.value, lo: low.value, hi: high.value});
      history.replaceState(null, "", "?" + params.toString());
    }).catch(function (err) { console.error(err); });
  }

  search.addEventListener("input", function () {
    var needle = search.value.toLowerCase();
    Array.prototype.forEach.call(dropdown.options, function (opt) {
      opt.hidden = needle !== "" && opt.text.toLowerCase().indexOf(needle) === -1;
    });
  });
  dropdown.addEventListener("change", function () { update("site-dropdown"); });
  low.addEventListener("change", function () { update("payload-slider"); });
  high.addEventListener("change", function () { update("payload-slider"); });
})();
</script>
</body>
</html>
`
