package data

import (
	"fmt"
	"time"

	"github.com/giygas/medicines-api/dataset"
	"github.com/giygas/medicines-api/interfaces"
	"github.com/giygas/medicines-api/logging"
	"github.com/giygas/medicines-api/metrics"
)

// LoadFile performs the one startup load of path into dc.
// On failure the container stays Unloaded and remembers the error, which is
// also returned; callers keep serving in degraded mode.
func LoadFile(dc *DataContainer, path string, validator interfaces.DataValidator) error {
	if !dc.BeginLoad() {
		logging.Info("Dataset already loaded or loading, skipping...")
		return nil
	}
	defer dc.EndLoad()

	logging.Info(fmt.Sprintf("Starting dataset load at: %s", time.Now().Format(time.RFC3339)), "path", path)
	start := time.Now()

	ds, err := dataset.Load(path)
	if err != nil {
		dc.MarkLoadFailed(err)
		metrics.DatasetLoaded.Set(0)
		logging.Error("Failed to load dataset, every query will report data not loaded", "path", path, "error", err)
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	if validator != nil {
		logQualityReport(validator.ReportDataQuality(ds))
	}

	if err := dc.Publish(ds); err != nil {
		return fmt.Errorf("failed to publish dataset: %w", err)
	}

	elapsed := time.Since(start)
	metrics.DatasetLoaded.Set(1)
	metrics.DatasetRecords.Set(float64(ds.Len()))
	metrics.DatasetLoadDuration.Set(elapsed.Seconds())
	logging.Info("Dataset load completed", "duration", elapsed.String(), "medicine_count", ds.Len())

	return nil
}

func logQualityReport(report *interfaces.DataQualityReport) {
	if report == nil {
		return
	}

	if report.DuplicateIDCount > 0 {
		logging.Warn("Duplicate ids detected",
			"total", report.DuplicateIDCount,
			"id_list", report.DuplicateIDs,
		)
	}

	if report.DuplicateNameCount > 0 {
		logging.Info("Medicine names shared by several records",
			"total", report.DuplicateNameCount,
			"name_list", report.DuplicateNames,
		)
	}

	if report.RecordsWithoutPrice > 0 {
		logging.Warn("Medicines without price",
			"count", report.RecordsWithoutPrice,
			"id_list", report.RecordsWithoutPriceIDs,
		)
	}

	if report.RecordsWithoutComposition > 0 {
		logging.Warn("Medicines without composition",
			"count", report.RecordsWithoutComposition,
			"id_list", report.RecordsWithoutCompositionID,
		)
	}

	logging.Info("Dataset quality summary",
		"records", report.TotalRecords,
		"without_manufacturer", report.RecordsWithoutManufacturer,
		"discontinued", report.DiscontinuedRecords,
	)
}
