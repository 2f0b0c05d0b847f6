package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costplanning/services"
	"costplanning/templates"
)

// HandleIndicators handles GET /versions/{id}/indicators
// Renders the summary panel from the stored indicator records, falling back
// to an on-the-fly computation when none have been persisted yet.
func HandleIndicators(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")

		if _, err := app.FindRecordById("cost_versions", versionID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "版本不存在")
		}
		return renderIndicatorsPanel(e, app, versionID)
	}
}

// HandleVersionRecalc handles POST /versions/{id}/recalc
// Forces a recompute of the stored indicators and returns the refreshed panel.
func HandleVersionRecalc(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")

		if _, err := app.FindRecordById("cost_versions", versionID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "版本不存在")
		}
		if err := services.RecalculateIndicators(app, versionID); err != nil {
			log.Printf("indicators: recalc failed for version %s: %v", versionID, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		SetToast(e, "success", "指标已重新计算")
		return renderIndicatorsPanel(e, app, versionID)
	}
}

func renderIndicatorsPanel(e *core.RequestEvent, app *pocketbase.PocketBase, versionID string) error {
	amountCol := services.DisplayColumn{Type: "number", Precision: 2}
	data := templates.IndicatorsData{VersionID: versionID}

	records, err := app.FindRecordsByFilter(
		"indicators",
		"version = {:v}",
		"key", 0, 0,
		map[string]any{"v": versionID},
	)
	if err == nil && len(records) > 0 {
		for _, rec := range records {
			data.Indicators = append(data.Indicators, templates.IndicatorItem{
				Key:   rec.GetString("key"),
				Label: rec.GetString("label"),
				Value: services.FormatCell(amountCol, rec.GetFloat("value")),
			})
		}
		data.ComputedAt = records[0].GetString("computed_at")
		return templates.IndicatorsPanel(data).Render(e.Request.Context(), e.Response)
	}

	indicators, err := services.ComputeIndicators(app, versionID)
	if err != nil {
		log.Printf("indicators: compute failed for version %s: %v", versionID, err)
		return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
	for _, ind := range indicators {
		data.Indicators = append(data.Indicators, templates.IndicatorItem{
			Key:   ind.Key,
			Label: ind.Label,
			Value: services.FormatCell(amountCol, ind.Value),
		})
	}
	return templates.IndicatorsPanel(data).Render(e.Request.Context(), e.Response)
}
