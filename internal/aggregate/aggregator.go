package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"pollweight/internal/models"
)

// ErrUnknownDimension is returned for a dimension the aggregator cannot read.
var ErrUnknownDimension = errors.New("unknown dimension")

// ValueFunc extracts a numeric value; false means the value is absent.
type ValueFunc func(r *models.Respondent) (float64, bool)

// CategoryFunc extracts a categorical value; empty means absent.
type CategoryFunc func(r *models.Respondent) string

// Common accessors.
var (
	Image = func(r *models.Respondent) (float64, bool) {
		if r.Image == nil {
			return 0, false
		}

		return *r.Image, true
	}
	ImageNormalized = func(r *models.Respondent) (float64, bool) { return r.ImageNormalized, r.Image != nil }
	Intention       = func(r *models.Respondent) (float64, bool) { return float64(r.Intention), true }
	Vote            = func(r *models.Respondent) string { return r.Vote }
	PriorVote       = func(r *models.Respondent) string { return r.PriorVote }
	Education       = func(r *models.Respondent) string { return r.Education }
)

// Aggregator groups respondents by dimensions. Known levels make groups with
// no respondent appear in tables as rows without data.
type Aggregator struct {
	levels map[Dimension][]string
}

// NewAggregator creates an aggregator. levels may be nil.
func NewAggregator(levels map[Dimension][]string) *Aggregator {
	return &Aggregator{levels: levels}
}

// DimensionValue returns the value of dim for r.
func DimensionValue(r *models.Respondent, dim Dimension) (string, error) {
	switch dim {
	case DimWave:
		return r.Wave, nil
	case DimDate:
		return r.Date.Format(DateLayout), nil
	case DimSex:
		return r.Sex, nil
	case DimAgeGroup:
		return r.AgeGroup, nil
	case DimProvince:
		return r.Province, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownDimension, dim)
	}
}

type group struct {
	key     []string
	members []*models.Respondent
}

// groupBy partitions the active records. Known levels of every dimension are
// expanded into empty groups.
func (a *Aggregator) groupBy(records []*models.Respondent, dims []Dimension) ([]*group, error) {
	index := make(map[string]*group)

	for _, r := range models.Active(records) {
		key := make([]string, len(dims))

		for i, d := range dims {
			v, err := DimensionValue(r, d)
			if err != nil {
				return nil, err
			}

			key[i] = v
		}

		k := strings.Join(key, keySep)
		if index[k] == nil {
			index[k] = &group{key: key}
		}

		index[k].members = append(index[k].members, r)
	}

	for _, key := range a.expand(dims) {
		k := strings.Join(key, keySep)
		if index[k] == nil {
			index[k] = &group{key: key}
		}
	}

	groups := make([]*group, 0, len(index))
	for _, g := range index {
		groups = append(groups, g)
	}

	sort.Slice(groups, func(i, j int) bool {
		return lessKey(groups[i].key, groups[j].key)
	})

	return groups, nil
}

// expand returns the cartesian product of known levels, or nil when a
// dimension has none.
func (a *Aggregator) expand(dims []Dimension) [][]string {
	if len(dims) == 0 {
		return nil
	}

	keys := [][]string{{}}

	for _, d := range dims {
		levels := a.levels[d]
		if len(levels) == 0 {
			return nil
		}

		next := make([][]string, 0, len(keys)*len(levels))

		for _, k := range keys {
			for _, l := range levels {
				next = append(next, append(append([]string(nil), k...), l))
			}
		}

		keys = next
	}

	return keys
}

func lessKey(a, b []string) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}

		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}

	return len(a) < len(b)
}

// WeightedMean computes sum(w*x)/sum(w) of value per group.
func (a *Aggregator) WeightedMean(name string, records []*models.Respondent, value ValueFunc, dims ...Dimension) (*Table, error) {
	groups, err := a.groupBy(records, dims)
	if err != nil {
		return nil, err
	}

	table := &Table{Name: name, KeyCols: dimNames(dims), Columns: []string{"weight_sum", "mean"}}

	for _, g := range groups {
		mean, weightSum, n := weightedMean(g.members, value)
		table.Rows = append(table.Rows, Row{
			Key:     g.key,
			N:       n,
			Values:  []float64{weightSum, mean},
			HasData: weightSum > 0,
		})
	}

	return table, nil
}

// WeightedProportion computes, per group and category, the share of the
// group's weight falling in the category.
func (a *Aggregator) WeightedProportion(name string, records []*models.Respondent, category CategoryFunc, dims ...Dimension) (*Table, error) {
	groups, err := a.groupBy(records, dims)
	if err != nil {
		return nil, err
	}

	categories := observedCategories(records, category)

	keyCols := append(dimNames(dims), "category")
	table := &Table{Name: name, KeyCols: keyCols, Columns: []string{"weight_sum", "proportion"}}

	for _, g := range groups {
		total := 0.0
		byCategory := make(map[string]float64)
		counts := make(map[string]int)

		for _, r := range g.members {
			c := category(r)
			if c == "" {
				continue
			}

			total += r.Weight
			byCategory[c] += r.Weight
			counts[c]++
		}

		for _, c := range categories {
			row := Row{
				Key:     append(append([]string(nil), g.key...), c),
				N:       counts[c],
				HasData: total > 0,
			}

			proportion := 0.0
			if total > 0 {
				proportion = byCategory[c] / total
			}

			row.Values = []float64{byCategory[c], proportion}
			table.Rows = append(table.Rows, row)
		}
	}

	return table, nil
}

func observedCategories(records []*models.Respondent, category CategoryFunc) []string {
	seen := make(map[string]bool)

	var categories []string

	for _, r := range models.Active(records) {
		c := category(r)
		if c != "" && !seen[c] {
			seen[c] = true
			categories = append(categories, c)
		}
	}

	sort.Strings(categories)

	return categories
}

func weightedMean(members []*models.Respondent, value ValueFunc) (mean, weightSum float64, n int) {
	var weighted float64

	for _, r := range members {
		x, ok := value(r)
		if !ok {
			continue
		}

		n++
		weighted += r.Weight * x
		weightSum += r.Weight
	}

	if weightSum == 0 {
		return 0, 0, n
	}

	return weighted / weightSum, weightSum, n
}

func unweightedMean(members []*models.Respondent, value ValueFunc) (float64, int) {
	var sum float64

	n := 0

	for _, r := range members {
		x, ok := value(r)
		if !ok {
			continue
		}

		n++
		sum += x
	}

	if n == 0 {
		return 0, 0
	}

	return sum / float64(n), n
}

// Indicators reports per (date, sex, age group) the respondent count and the
// raw and weighted means of candidate image and vote intention.
func (a *Aggregator) Indicators(records []*models.Respondent) (*Table, error) {
	dims := []Dimension{DimDate, DimSex, DimAgeGroup}

	groups, err := a.groupBy(records, dims)
	if err != nil {
		return nil, err
	}

	table := &Table{
		Name:    "indicators",
		KeyCols: dimNames(dims),
		Columns: []string{"image_mean", "intention_mean", "image_weighted", "intention_weighted"},
	}

	for _, g := range groups {
		imageMean, n := unweightedMean(g.members, Image)
		intentionMean, _ := unweightedMean(g.members, Intention)
		imageWeighted, wsum, _ := weightedMean(g.members, Image)
		intentionWeighted, _, _ := weightedMean(g.members, Intention)

		table.Rows = append(table.Rows, Row{
			Key:     g.key,
			N:       len(g.members),
			Values:  []float64{imageMean, intentionMean, imageWeighted, intentionWeighted},
			HasData: n > 0 && wsum > 0,
		})
	}

	return table, nil
}
