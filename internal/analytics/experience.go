package analytics

import (
	"sort"

	"shopmetrics/internal/dataprocessing"
	"shopmetrics/pkg/contracts/domain"
)

// Delivery thresholds in days
const (
	FastDeliveryMaxDays = 3
	SlowDeliveryMinDays = 8
)

// AnalyzeCustomerSatisfaction summarizes the non-null review scores of year.
// A year without reviews yields a zero-valued result with HasData false.
func (c *Calculator) AnalyzeCustomerSatisfaction(year int) (domain.CustomerSatisfaction, error) {
	if err := c.requireColumn(domain.ColReviewScore); err != nil {
		return domain.CustomerSatisfaction{}, err
	}

	var total, sum, fives, fourPlus, low int
	for _, r := range c.rowsForYear(year) {
		if r.ReviewScore == nil {
			continue
		}
		s := *r.ReviewScore
		total++
		sum += s
		switch {
		case s == 5:
			fives++
			fourPlus++
		case s == 4:
			fourPlus++
		case s <= 2:
			low++
		}
	}
	if total == 0 {
		return domain.CustomerSatisfaction{}, nil
	}

	return domain.CustomerSatisfaction{
		HasData:              true,
		AvgReviewScore:       float64(sum) / float64(total),
		TotalReviews:         total,
		Score5Percentage:     percentage(fives, total),
		Score4PlusPercentage: percentage(fourPlus, total),
		Score1To2Percentage:  percentage(low, total),
	}, nil
}

// AnalyzeDeliveryPerformance summarizes the known delivery durations of year.
// Fast deliveries take at most three days, slow ones more than seven.
func (c *Calculator) AnalyzeDeliveryPerformance(year int) (domain.DeliveryPerformance, error) {
	if err := c.requireColumn(domain.ColDeliveryDays); err != nil {
		return domain.DeliveryPerformance{}, err
	}

	var days []int
	for _, r := range c.rowsForYear(year) {
		if r.DeliveryDays != nil {
			days = append(days, *r.DeliveryDays)
		}
	}
	if len(days) == 0 {
		return domain.DeliveryPerformance{}, nil
	}

	sort.Ints(days)
	sum, fast, slow := 0, 0, 0
	for _, d := range days {
		sum += d
		if d <= FastDeliveryMaxDays {
			fast++
		}
		if d >= SlowDeliveryMinDays {
			slow++
		}
	}

	return domain.DeliveryPerformance{
		HasData:                true,
		AvgDeliveryDays:        float64(sum) / float64(len(days)),
		MedianDeliveryDays:     median(days),
		FastDeliveryPercentage: percentage(fast, len(days)),
		SlowDeliveryPercentage: percentage(slow, len(days)),
		TotalDeliveries:        len(days),
	}, nil
}

// AnalyzeReviewDistribution returns the count and share of each score 1..5
func (c *Calculator) AnalyzeReviewDistribution(year int) ([]domain.ReviewScoreShare, error) {
	if err := c.requireColumn(domain.ColReviewScore); err != nil {
		return nil, err
	}

	var counts [6]int
	total := 0
	for _, r := range c.rowsForYear(year) {
		if r.ReviewScore != nil && *r.ReviewScore >= 1 && *r.ReviewScore <= 5 {
			counts[*r.ReviewScore]++
			total++
		}
	}

	out := make([]domain.ReviewScoreShare, 0, 5)
	for score := 1; score <= 5; score++ {
		out = append(out, domain.ReviewScoreShare{
			Score:      score,
			Count:      counts[score],
			Percentage: percentage(counts[score], total),
		})
	}
	return out, nil
}

// AnalyzeDeliverySatisfaction averages review scores per delivery speed
// bucket. Rows lacking either a delivery duration or a score are skipped,
// and buckets without reviews are omitted.
func (c *Calculator) AnalyzeDeliverySatisfaction(year int) ([]domain.DeliverySatisfaction, error) {
	if err := c.requireColumn(domain.ColDeliveryDays); err != nil {
		return nil, err
	}
	if err := c.requireColumn(domain.ColReviewScore); err != nil {
		return nil, err
	}

	type bucket struct{ sum, n int }
	buckets := make(map[string]*bucket)
	for _, r := range c.rowsForYear(year) {
		if r.DeliveryDays == nil || r.ReviewScore == nil {
			continue
		}
		speed := dataprocessing.DeliverySpeedOf(r.DeliveryDays)
		b, ok := buckets[speed]
		if !ok {
			b = &bucket{}
			buckets[speed] = b
		}
		b.sum += *r.ReviewScore
		b.n++
	}

	out := make([]domain.DeliverySatisfaction, 0, len(dataprocessing.DeliverySpeedBuckets))
	for _, speed := range dataprocessing.DeliverySpeedBuckets {
		b, ok := buckets[speed]
		if !ok {
			continue
		}
		out = append(out, domain.DeliverySatisfaction{
			DeliverySpeed:  speed,
			AvgReviewScore: float64(b.sum) / float64(b.n),
			Reviews:        b.n,
		})
	}
	return out, nil
}

// median expects sorted input
func median(sorted []int) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}
