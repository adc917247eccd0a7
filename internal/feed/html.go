package feed

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strconv"
)

// Markup follows the Bootstrap classes used by the entry page.
var feedTemplate = template.Must(template.New("feed").Funcs(template.FuncMap{
	"coord": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}).Parse(`
{{- define "loading" -}}
<div class="text-center py-4">
  <div class="spinner-border text-primary" role="status">
    <span class="visually-hidden">Carregando...</span>
  </div>
  <p class="mt-2">{{.Message}}</p>
</div>
{{- end -}}
{{- define "empty" -}}
<div class="alert alert-warning">{{.Message}}</div>
{{- end -}}
{{- define "error" -}}
<div class="alert alert-danger">{{.Message}}</div>
{{- end -}}
{{- define "populated" -}}
{{- range $i, $card := .Cards}}
<div class="place-card" data-index="{{$i}}">
  <h5>{{$card.Name}}</h5>
  <p class="text-muted">{{$card.Address}}</p>
  <div class="d-flex justify-content-between align-items-center">
    <span class="badge bg-primary">{{$card.Kind}}</span>
    {{- with $card.Action}}
    <button class="btn btn-sm btn-outline-primary view-on-map" data-lat="{{coord .Lat}}" data-lng="{{coord .Lon}}" data-zoom="{{.Zoom}}">Ver no mapa</button>
    {{- end}}
  </div>
</div>
{{- end}}
{{- end -}}
`))

// RenderHTML renders the state as the HTML fragment placed in the results region.
func RenderHTML(s State) (string, error) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, s); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteHTML writes the HTML fragment for s to w.
func WriteHTML(w io.Writer, s State) error {
	switch s.Kind {
	case KindLoading, KindEmpty, KindError, KindPopulated:
	default:
		return fmt.Errorf("unknown render state %q", s.Kind)
	}
	if err := feedTemplate.ExecuteTemplate(w, string(s.Kind), s); err != nil {
		return fmt.Errorf("render %s: %w", s.Kind, err)
	}
	return nil
}
