package dashboard

import (
	"bufio"
	"encoding/json"
	"net/http"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/ychia112/DSCI560-Lab5/internal/domain"
)

const topKeywordBars = 20

// StartServer serves a summary page over the NDJSON record file: community
// share and the most frequent extracted keywords.
func StartServer(dataFile string, port string) error {
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		records := loadRecords(dataFile)

		// 1. Community share
		pie := charts.NewPie()
		pie.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: "Subreddit Share"}),
			charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		)

		subCounts := make(map[string]int)
		for _, rec := range records {
			subCounts[rec.Subreddit]++
		}

		var pieItems []opts.PieData
		for k, v := range subCounts {
			pieItems = append(pieItems, opts.PieData{Name: k, Value: v})
		}
		pie.AddSeries("Records", pieItems)

		// 2. Keyword frequency across harvested records
		bar := charts.NewBar()
		bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Top Keywords"}))

		kwCounts := make(map[string]int)
		for _, rec := range records {
			for _, k := range rec.Keywords {
				kwCounts[k]++
			}
		}

		type kw struct {
			word  string
			count int
		}
		ranked := make([]kw, 0, len(kwCounts))
		for k, v := range kwCounts {
			ranked = append(ranked, kw{k, v})
		}
		sort.Slice(ranked, func(i, j int) bool { return ranked[i].count > ranked[j].count })
		if len(ranked) > topKeywordBars {
			ranked = ranked[:topKeywordBars]
		}

		var barX []string
		var barY []opts.BarData
		for _, item := range ranked {
			barX = append(barX, item.word)
			barY = append(barY, opts.BarData{Value: item.count})
		}
		bar.SetXAxis(barX).AddSeries("Mentions", barY)

		pie.Render(w)
		bar.Render(w)
	})

	return http.ListenAndServe(":"+port, nil)
}

func loadRecords(path string) []domain.Record {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var records []domain.Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec domain.Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err == nil {
			records = append(records, rec)
		}
	}
	return records
}
