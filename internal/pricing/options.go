package pricing

// Options lists the durations the booking form offers.
type Options struct {
	HourOptions  []int `json:"hour_options"`
	DayOptions   []int `json:"day_options"`
	MonthOptions []int `json:"month_options"`
}

var hourOptions = []int{1, 2, 3, 4, 5, 6, 7, 14, 21, 30}

func DurationOptions() Options {
	return Options{
		HourOptions:  append([]int(nil), hourOptions...),
		DayOptions:   intRange(1, 31),
		MonthOptions: intRange(1, 12),
	}
}

func intRange(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}
