// Package templates holds the server-rendered pages.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/google/uuid"
)

const dashboardHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Sales Analyzer</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"></script>
</head>
`

// Dashboard renders the upload form and the panels that the SSE endpoints
// fill in. datasetID may be empty before the first upload; anything that is
// not a dataset uuid renders the empty page.
func Dashboard(datasetID string) templ.Component {
	if err := uuid.Validate(datasetID); err != nil {
		datasetID = ""
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, dashboardHead); err != nil {
			return err
		}

		id := templ.EscapeString(datasetID)
		body := `<body data-signals="{datasetId: '` + id + `', kpis: {}, monthlyData: [], paretoData: [], forecastData: []}">
<header><h1>Sales Analyzer</h1></header>
<form action="/api/datasets" method="post" enctype="multipart/form-data">
<input type="file" name="file" accept=".csv,.xlsx,.xls">
<button type="submit">Upload</button>
</form>
`
		if datasetID != "" {
			body += `<section data-on-load="@get('/sse/datasets/` + id + `/refresh-all')">
<div id="dashboard-error"></div>
<div class="kpis">
<span data-text="$kpis.total_revenue"></span>
<span data-text="$kpis.total_orders"></span>
<span data-text="$kpis.most_profitable_product"></span>
</div>
<ul id="insights-content"></ul>
<h2>Suggested packs</h2>
<div id="packs-content"></div>
</section>
`
		} else {
			body += "<p>Upload a sales export to get started.</p>\n"
		}
		body += "</body>\n</html>\n"

		_, err := io.WriteString(w, body)
		return err
	})
}
