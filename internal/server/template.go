package server

import "html/template"

var indexTemplate = template.Must(template.New("index").Parse(
	`<html>
<head>
<title>California House Price Prediction</title>
<style>
body { font-family: sans-serif; max-width: 640px; margin: 2em auto; }
label { display: block; margin-top: 0.8em; font-weight: bold; }
input[type=range] { width: 100%; }
.prediction-result { font-size: 1.6em; margin: 0.8em 0; }
.prediction-fault { color: #a00; margin: 0.8em 0; }
table { border-collapse: collapse; margin-top: 1.5em; width: 100%; }
td, th { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
</style>
</head>
<body>
<h1>California House Price Prediction</h1>
<p>Predict California house prices based on location and features.</p>
<form id="prediction-form" action="/">
{{range .Fields}}
	<label for="{{.Name}}">{{.Label}}: <output for="{{.Name}}">{{.Value}}</output></label>
	<input type="range" id="{{.Name}}" name="{{.Name}}" min="{{.Min}}" max="{{.Max}}" step="{{.Step}}" value="{{.Value}}"
		oninput="this.previousElementSibling.lastElementChild.value = this.value">
{{end}}
	<label for="ocean_proximity">Ocean Proximity</label>
	<select id="ocean_proximity" name="ocean_proximity">
{{$selected := .SelectedProximity}}
{{range .Proximities}}
		<option value="{{.}}"{{if eq . $selected}} selected{{end}}>{{.}}</option>
{{end}}
	</select>
	<p><input type="submit" value="Predict"></p>
</form>
{{if .Prediction}}<div class="prediction-result">Predicted House Price: <strong>{{.Prediction}}</strong></div>{{end}}
{{if .PredictionErr}}<div class="prediction-fault">{{.PredictionErr}}</div>{{end}}
{{if .Examples}}
<table>
	<tr><th>Example</th><th>Ocean Proximity</th><th>Prediction</th></tr>
{{range .Examples}}
	<tr><td>{{.Label}}</td><td>{{.Proximity}}</td><td>{{if .Result}}{{.Result}}{{else}}{{.Err}}{{end}}</td></tr>
{{end}}
</table>
{{end}}
</body>
</html>`))
