package synthetic

import (
	"math"
	"math/rand/v2"

	"github.com/okian/excess/internal/domain/calendar"
	"github.com/okian/excess/internal/domain/model"
)

// Weekly death rates per person by age band in 2000, before scaling.
var bandRates = [5]float64{0.00001, 0.00006, 0.0003, 0.0009, 0.003}

// Generate produces one "b" record per country and ISO week. The output is
// a pure function of cfg.
func Generate(cfg Config) []model.Record {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	var out []model.Record
	for _, c := range cfg.Countries {
		for year := c.FromYear; year <= c.ToYear; year++ {
			last := calendar.WeeksInYear(year)
			if year == c.ToYear && c.LastWeek > 0 {
				last = min(last, c.LastWeek)
			}
			for week := 1; week <= last; week++ {
				f := cfg.factor(c, year, week, rng)
				out = append(out, model.Record{
					CountryCode: c.Code,
					Sex:         string(model.SexBoth),
					Year:        year,
					Week:        week,
					Rates: model.AgeBandRates{
						R0_14:  model.Rate(bandRates[0] * f),
						R15_64: model.Rate(bandRates[1] * f),
						R65_74: model.Rate(bandRates[2] * f),
						R75_84: model.Rate(bandRates[3] * f),
						R85p:   model.Rate(bandRates[4] * f),
					},
				})
			}
		}
	}
	return out
}

// factor is the multiplier applied to every band of one country-week.
func (cfg Config) factor(c Country, year, week int, rng *rand.Rand) float64 {
	scale := c.Scale
	if scale == 0 {
		scale = 1
	}
	t := float64(year-2000) + float64(week-1)/52
	f := scale * math.Exp(cfg.Trend*t)
	f *= 1 + cfg.Seasonality*math.Cos(2*math.Pi*float64(week-2)/52)
	if cfg.Shock > 0 && year >= cfg.ShockFrom && year <= cfg.ShockTo {
		f *= cfg.Shock
	}
	if cfg.Noise > 0 {
		f *= math.Max(0.5, 1+cfg.Noise*rng.NormFloat64())
	}
	return f
}
