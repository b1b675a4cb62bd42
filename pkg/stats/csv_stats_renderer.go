package stats

import (
	"bytes"
	"encoding/csv"
	"strconv"

	log "github.com/sirupsen/logrus"
)

type CsvStatsRendererImpl struct {
}

func NewCsvStatsRenderer() *CsvStatsRendererImpl {
	return &CsvStatsRendererImpl{}
}

func (t *CsvStatsRendererImpl) RenderStats(stats StatsSummary) (string, error) {
	data := make([][]string, 0, len(stats.Categories)+2)
	data = append(data, []string{"Category", "Planned", "Completed"})
	for _, c := range stats.Categories {
		data = append(data, []string{
			string(c.Category),
			strconv.Itoa(c.Total),
			strconv.Itoa(c.Completed),
		})
	}
	data = append(data, []string{
		"SUM",
		strconv.Itoa(stats.TotalEvents),
		strconv.Itoa(stats.TotalCompleted),
	})

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
