// Package analytics computes the business metrics of a sales dataset:
// revenue and growth, monthly trends, category and state rankings,
// review satisfaction and delivery performance.
//
// A Calculator is built once per dataset and is read-only afterwards, so a
// single instance may serve concurrent callers. Every method takes the
// analysis year explicitly and filters the dataset itself.
//
// Methods that depend on an optional column (product_category_name,
// customer_state, review_score, delivery_days) return an error matching
// errors.ErrColumnUnavailable when the dataset lacks it.
// GenerateComprehensiveReport turns those errors into unavailable report
// sections instead of failing.
package analytics
