package voltplot

import "github.com/sirupsen/logrus"

type Summary struct {
	Count int

	// Relative time of the last reading, in the units of the input timestamps.
	Duration int64

	MinVolts  float64
	MaxVolts  float64
	MeanVolts float64
}

// Summarize computes simple statistics over a Series. An empty Series gives
// the zero Summary.
func Summarize(s Series) Summary {
	if s.Len() == 0 {
		return Summary{}
	}

	summary := Summary{
		Count:    s.Len(),
		MinVolts: s.Volts[0],
		MaxVolts: s.Volts[0],
	}

	var sum float64
	for i, v := range s.Volts {
		summary.MinVolts = Min(summary.MinVolts, v)
		summary.MaxVolts = Max(summary.MaxVolts, v)
		summary.Duration = Max(summary.Duration, s.RelativeTimes[i])
		sum += v
	}

	summary.MeanVolts = sum / float64(summary.Count)

	return summary
}

func (s Summary) Fields() logrus.Fields {
	return logrus.Fields{
		"count":     s.Count,
		"duration":  s.Duration,
		"minVolts":  s.MinVolts,
		"maxVolts":  s.MaxVolts,
		"meanVolts": s.MeanVolts,
	}
}
