package activity

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"

	"github.com/imsgstats/imsgstats/internal/errors"
	"github.com/imsgstats/imsgstats/internal/model"
	"github.com/imsgstats/imsgstats/pkg/util"
)

const (
	RunType = "Run"

	// OutputDateLayout renders the local time with its offset.
	OutputDateLayout = "2006-01-02 15:04:05-07:00"

	kmToMiles    = 0.621371
	metresToFeet = 3.28084
)

var Header = []string{
	"Activity Date", "Activity Type", "Moving Time", "Distance",
	"Max Speed", "Average Speed", "Elevation Gain", "Speed",
}

// inputLayouts are the date formats seen in activity exports, all UTC.
var inputLayouts = []string{
	"Jan 2, 2006, 3:04:05 PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05Z07:00",
}

type record struct {
	Date          string  `mapstructure:"Activity Date"`
	Type          string  `mapstructure:"Activity Type"`
	MovingTime    float64 `mapstructure:"Moving Time"`
	Distance      float64 `mapstructure:"Distance"`
	MaxSpeed      float64 `mapstructure:"Max Speed"`
	AverageSpeed  float64 `mapstructure:"Average Speed"`
	ElevationGain float64 `mapstructure:"Elevation Gain"`
}

// Load reads an activity export and returns its runs converted to imperial units.
func Load(path string, loc *time.Location) ([]*model.Activity, error) {
	if !util.FileExists(path) {
		return nil, errors.ErrFileNotFound(path)
	}
	header, rows, err := util.ReadCSVFile(path)
	if err != nil {
		return nil, errors.ReadFileFailed(path, err)
	}
	return Parse(header, rows, loc)
}

func Parse(header []string, rows [][]string, loc *time.Location) ([]*model.Activity, error) {
	if loc == nil {
		loc = time.UTC
	}
	// Exports repeat some column names; the first one is the summary value.
	columns := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := columns[h]; !ok {
			columns[h] = i
		}
	}
	for _, col := range Header[:len(Header)-1] {
		if _, ok := columns[col]; !ok {
			return nil, errors.InvalidArg("activity column " + strconv.Quote(col))
		}
	}

	out := make([]*model.Activity, 0)
	for i, row := range rows {
		fields := make(map[string]any, len(columns))
		for name, idx := range columns {
			if idx < len(row) {
				fields[name] = strings.TrimSpace(row[idx])
			}
		}
		if fields["Activity Type"] != RunType {
			continue
		}

		var rec record
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &rec,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(fields); err != nil {
			return nil, errors.InvalidRecord("activity", i, err.Error())
		}
		date, err := parseDate(rec.Date)
		if err != nil {
			return nil, errors.InvalidRecord("activity", i, "bad date "+strconv.Quote(rec.Date))
		}
		out = append(out, convert(rec, date.In(loc)))
	}
	log.Debug().Int("rows", len(rows)).Int("runs", len(out)).Msg("activities parsed")
	return out, nil
}

func convert(rec record, date time.Time) *model.Activity {
	a := &model.Activity{
		Date:          date,
		Type:          rec.Type,
		MovingTime:    rec.MovingTime / 60,
		Distance:      rec.Distance * kmToMiles,
		MaxSpeed:      rec.MaxSpeed / kmToMiles,
		AverageSpeed:  rec.AverageSpeed / kmToMiles,
		ElevationGain: rec.ElevationGain * metresToFeet,
	}
	if a.MovingTime > 0 {
		a.Speed = a.Distance / (a.MovingTime / 60)
	}
	a.MovingTime = round3(a.MovingTime)
	a.Distance = round3(a.Distance)
	a.MaxSpeed = round3(a.MaxSpeed)
	a.AverageSpeed = round3(a.AverageSpeed)
	a.ElevationGain = round3(a.ElevationGain)
	a.Speed = round3(a.Speed)
	return a
}

func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range inputLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// Write stores activities as the cleaned table.
func Write(path string, activities []*model.Activity) error {
	rows := make([][]string, 0, len(activities))
	for _, a := range activities {
		rows = append(rows, []string{
			a.Date.Format(OutputDateLayout),
			a.Type,
			formatFloat(a.MovingTime),
			formatFloat(a.Distance),
			formatFloat(a.MaxSpeed),
			formatFloat(a.AverageSpeed),
			formatFloat(a.ElevationGain),
			formatFloat(a.Speed),
		})
	}
	if err := util.WriteCSVFileAtomic(path, Header, rows, false); err != nil {
		return errors.WriteFileFailed(path, err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
