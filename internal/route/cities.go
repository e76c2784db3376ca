package route

// clusters lists, per start city, the cities a multi-city trip may visit.
// The start city is always first.
var clusters = map[string][]string{
	"Beijing":   {"Beijing"},
	"Shanghai":  {"Shanghai", "Suzhou", "Hangzhou"},
	"Xi'an":     {"Xi'an"},
	"Chengdu":   {"Chengdu"},
	"Guilin":    {"Guilin"},
	"Suzhou":    {"Suzhou", "Hangzhou", "Shanghai"},
	"Hangzhou":  {"Hangzhou", "Suzhou", "Shanghai"},
	"Nanjing":   {"Nanjing", "Suzhou", "Hangzhou"},
	"Wuzhen":    {"Wuzhen", "Hangzhou", "Suzhou"},
	"Guangzhou": {"Guangzhou", "Hong Kong", "Macau"},
	"Hong Kong": {"Hong Kong", "Macau", "Guangzhou"},
	"Macau":     {"Macau", "Hong Kong", "Guangzhou"},
}

// Cluster returns the cities associated with start. Unknown cities form a
// single-city cluster.
func Cluster(start string) []string {
	if c, ok := clusters[start]; ok {
		return append([]string(nil), c...)
	}
	return []string{start}
}

// CitySchedule assigns one city to each of n days.
func CitySchedule(start string, n int) []string {
	if n <= 0 {
		return []string{}
	}
	schedule := make([]string, 0, n)

	switch {
	case n <= 2:
		for range n {
			schedule = append(schedule, start)
		}
	case n <= 4:
		inStart := (n + 1) / 2
		nearby := start
		if c := Cluster(start); len(c) > 1 {
			nearby = c[1]
		}
		for i := range n {
			if i < inStart {
				schedule = append(schedule, start)
			} else {
				schedule = append(schedule, nearby)
			}
		}
	default:
		cluster := Cluster(start)
		per := n / len(cluster)
		extra := n % len(cluster)
		for i, city := range cluster {
			days := per
			if i < extra {
				days++
			}
			for range days {
				schedule = append(schedule, city)
			}
		}
	}
	return schedule
}
