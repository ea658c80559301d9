package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Report section keys
const (
	SectionRevenueMetrics        = "revenue_metrics"
	SectionMonthlyTrends         = "monthly_trends"
	SectionProductPerformance    = "product_performance"
	SectionGeographicPerformance = "geographic_performance"
	SectionCustomerSatisfaction  = "customer_satisfaction"
	SectionDeliveryPerformance   = "delivery_performance"
	SectionReviewDistribution    = "review_distribution"
	SectionDeliverySatisfaction  = "delivery_satisfaction"
)

// Report is a point-in-time snapshot of the business metrics for one
// analysis period, optionally compared against a previous period.
type Report struct {
	AnalysisPeriod   int       `json:"analysis_period"`
	ComparisonPeriod *int      `json:"comparison_period"`
	GeneratedAt      time.Time `json:"generated_at"`

	RevenueMetrics        Section[RevenueMetrics]         `json:"revenue_metrics"`
	MonthlyTrends         Section[[]MonthlyTrend]         `json:"monthly_trends"`
	ProductPerformance    Section[ProductPerformance]     `json:"product_performance"`
	GeographicPerformance Section[[]StatePerformance]     `json:"geographic_performance"`
	CustomerSatisfaction  Section[CustomerSatisfaction]   `json:"customer_satisfaction"`
	DeliveryPerformance   Section[DeliveryPerformance]    `json:"delivery_performance"`
	ReviewDistribution    Section[[]ReviewScoreShare]     `json:"review_distribution"`
	DeliverySatisfaction  Section[[]DeliverySatisfaction] `json:"delivery_satisfaction"`
}

// UnavailableSections maps each unavailable section key to its reason
func (r *Report) UnavailableSections() map[string]string {
	out := make(map[string]string)
	add := func(key string, ok bool, reason string) {
		if !ok {
			out[key] = reason
		}
	}
	add(SectionRevenueMetrics, r.RevenueMetrics.Available, r.RevenueMetrics.Reason)
	add(SectionMonthlyTrends, r.MonthlyTrends.Available, r.MonthlyTrends.Reason)
	add(SectionProductPerformance, r.ProductPerformance.Available, r.ProductPerformance.Reason)
	add(SectionGeographicPerformance, r.GeographicPerformance.Available, r.GeographicPerformance.Reason)
	add(SectionCustomerSatisfaction, r.CustomerSatisfaction.Available, r.CustomerSatisfaction.Reason)
	add(SectionDeliveryPerformance, r.DeliveryPerformance.Available, r.DeliveryPerformance.Reason)
	add(SectionReviewDistribution, r.ReviewDistribution.Available, r.ReviewDistribution.Reason)
	add(SectionDeliverySatisfaction, r.DeliverySatisfaction.Available, r.DeliverySatisfaction.Reason)
	return out
}

// Section holds either a computed metric group or the reason it could not be computed
type Section[T any] struct {
	Value     T
	Available bool
	Reason    string
}

// AvailableSection wraps a computed value
func AvailableSection[T any](v T) Section[T] {
	return Section[T]{Value: v, Available: true}
}

// UnavailableSection marks a section as not computable
func UnavailableSection[T any](reason string) Section[T] {
	return Section[T]{Reason: reason}
}

type unavailableJSON struct {
	Unavailable bool   `json:"unavailable"`
	Reason      string `json:"reason"`
}

// MarshalJSON emits the value itself, or an unavailable marker object
func (s Section[T]) MarshalJSON() ([]byte, error) {
	if !s.Available {
		return json.Marshal(unavailableJSON{Unavailable: true, Reason: s.Reason})
	}
	return json.Marshal(s.Value)
}

// GrowthRate is a percentage change that is undefined when the base is zero
type GrowthRate struct {
	Value float64
	Valid bool
}

// NewGrowthRate computes (current-previous)/previous*100
func NewGrowthRate(current, previous float64) GrowthRate {
	if previous == 0 {
		return GrowthRate{}
	}
	return GrowthRate{Value: (current - previous) / previous * 100, Valid: true}
}

// String renders the rate with two decimals, or N/A
func (g GrowthRate) String() string {
	if !g.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", g.Value)
}

// MarshalJSON emits a number, or null when undefined
func (g GrowthRate) MarshalJSON() ([]byte, error) {
	if !g.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(g.Value)
}

// UnmarshalJSON accepts a number or null
func (g *GrowthRate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*g = GrowthRate{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*g = GrowthRate{Value: v, Valid: true}
	return nil
}

// RevenueMetrics summarizes sales for one year
type RevenueMetrics struct {
	Year              int                `json:"year"`
	TotalRevenue      float64            `json:"total_revenue"`
	TotalOrders       int                `json:"total_orders"`
	TotalItemsSold    int                `json:"total_items_sold"`
	AverageOrderValue float64            `json:"average_order_value"`
	Comparison        *RevenueComparison `json:"comparison,omitempty"`
}

// RevenueComparison carries the previous period's figures and the growth against them
type RevenueComparison struct {
	PreviousYear              int        `json:"previous_year"`
	PreviousRevenue           float64    `json:"previous_year_revenue"`
	PreviousOrders            int        `json:"previous_year_orders"`
	PreviousItemsSold         int        `json:"previous_year_items_sold"`
	PreviousAverageOrderValue float64    `json:"previous_year_aov"`
	RevenueGrowthRate         GrowthRate `json:"revenue_growth_rate"`
	OrderGrowthRate           GrowthRate `json:"order_growth_rate"`
	AOVGrowthRate             GrowthRate `json:"aov_growth_rate"`
}

// MonthlyTrend is one month of the trend series
type MonthlyTrend struct {
	Month         int        `json:"month"`
	Revenue       float64    `json:"revenue"`
	Orders        int        `json:"orders"`
	RevenueGrowth GrowthRate `json:"revenue_growth"`
}

// CategoryPerformance is one product category's share of the year
type CategoryPerformance struct {
	Category     string  `json:"product_category_name"`
	TotalRevenue float64 `json:"total_revenue"`
	Orders       int     `json:"orders"`
	ItemsSold    int     `json:"items_sold"`
	RevenueShare float64 `json:"revenue_share"`
}

// ProductPerformance holds the full category ranking and its top-N prefix
type ProductPerformance struct {
	TopN          int                   `json:"top_n"`
	AllCategories []CategoryPerformance `json:"all_categories"`
	TopCategories []CategoryPerformance `json:"top_categories"`
}

// StatePerformance is one customer state's sales
type StatePerformance struct {
	State   string  `json:"customer_state"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// CustomerSatisfaction summarizes review scores. HasData is false when no
// reviews exist for the period, in which case every figure is zero.
type CustomerSatisfaction struct {
	HasData              bool    `json:"has_data"`
	AvgReviewScore       float64 `json:"avg_review_score"`
	TotalReviews         int     `json:"total_reviews"`
	Score5Percentage     float64 `json:"score_5_percentage"`
	Score4PlusPercentage float64 `json:"score_4_plus_percentage"`
	Score1To2Percentage  float64 `json:"score_1_2_percentage"`
}

// DeliveryPerformance summarizes delivery durations in days
type DeliveryPerformance struct {
	HasData                bool    `json:"has_data"`
	AvgDeliveryDays        float64 `json:"avg_delivery_days"`
	MedianDeliveryDays     float64 `json:"median_delivery_days"`
	FastDeliveryPercentage float64 `json:"fast_delivery_percentage"`
	SlowDeliveryPercentage float64 `json:"slow_delivery_percentage"`
	TotalDeliveries        int     `json:"total_deliveries"`
}

// ReviewScoreShare is the count and share of one review score
type ReviewScoreShare struct {
	Score      int     `json:"review_score"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DeliverySatisfaction is the average review score for one delivery speed bucket
type DeliverySatisfaction struct {
	DeliverySpeed  string  `json:"delivery_speed"`
	AvgReviewScore float64 `json:"avg_review_score"`
	Reviews        int     `json:"reviews"`
}

// Trend describes the change of a KPI against its comparison period
type Trend struct {
	Available bool    `json:"available"`
	Arrow     string  `json:"arrow,omitempty"`
	Class     string  `json:"class,omitempty"`
	Change    float64 `json:"change"`
	Text      string  `json:"text"`
}
