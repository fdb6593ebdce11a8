package service

import (
	"sort"

	"github.com/noah-isme/schooldb-api/internal/models"
)

// AverageByStudent pools every mark a student owns into one arithmetic
// mean. Students without marks do not appear. Output is ordered by
// admission number.
func AverageByStudent(rows []models.PerformanceMark) []models.StudentAverage {
	type acc struct {
		avg   models.StudentAverage
		total float64
	}
	byStudent := make(map[string]*acc)
	for _, row := range rows {
		a, ok := byStudent[row.AdmissionNumber]
		if !ok {
			a = &acc{avg: models.StudentAverage{
				AdmissionNumber: row.AdmissionNumber,
				Name:            row.FirstName + " " + row.LastName,
				Stream:          row.Stream,
			}}
			byStudent[row.AdmissionNumber] = a
		}
		a.total += row.Marks
		a.avg.Records++
	}

	averages := make([]models.StudentAverage, 0, len(byStudent))
	for _, a := range byStudent {
		a.avg.Average = a.total / float64(a.avg.Records)
		averages = append(averages, a.avg)
	}
	sort.Slice(averages, func(i, j int) bool {
		return averages[i].AdmissionNumber < averages[j].AdmissionNumber
	})
	return averages
}

// RankStudents orders by average descending, breaking ties by admission
// number ascending, and numbers the result from 1.
func RankStudents(averages []models.StudentAverage) []models.RankedStudent {
	sorted := make([]models.StudentAverage, len(averages))
	copy(sorted, averages)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Average != sorted[j].Average {
			return sorted[i].Average > sorted[j].Average
		}
		return sorted[i].AdmissionNumber < sorted[j].AdmissionNumber
	})

	ranked := make([]models.RankedStudent, len(sorted))
	for i, avg := range sorted {
		ranked[i] = models.RankedStudent{Rank: i + 1, StudentAverage: avg}
	}
	return ranked
}

// RankStream ranks only the students of one stream.
func RankStream(averages []models.StudentAverage, stream string) []models.RankedStudent {
	members := make([]models.StudentAverage, 0)
	for _, avg := range averages {
		if avg.Stream == stream {
			members = append(members, avg)
		}
	}
	return RankStudents(members)
}

// StreamAverages averages the per-student means of each stream, best
// stream first and ties by stream name.
func StreamAverages(averages []models.StudentAverage) []models.StreamAverage {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, avg := range averages {
		sums[avg.Stream] += avg.Average
		counts[avg.Stream]++
	}

	streams := make([]models.StreamAverage, 0, len(sums))
	for stream, sum := range sums {
		streams = append(streams, models.StreamAverage{
			Stream:   stream,
			Average:  sum / float64(counts[stream]),
			Students: counts[stream],
		})
	}
	sort.Slice(streams, func(i, j int) bool {
		if streams[i].Average != streams[j].Average {
			return streams[i].Average > streams[j].Average
		}
		return streams[i].Stream < streams[j].Stream
	})
	return streams
}

// TermTrend averages marks per term label, ordered by label.
func TermTrend(rows []models.PerformanceMark) []models.TermAverage {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, row := range rows {
		sums[row.Term] += row.Marks
		counts[row.Term]++
	}

	trend := make([]models.TermAverage, 0, len(sums))
	for term, sum := range sums {
		trend = append(trend, models.TermAverage{Term: term, Average: sum / float64(counts[term])})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Term < trend[j].Term })
	return trend
}

// FindRank returns the ranked entry for a student.
func FindRank(ranked []models.RankedStudent, admissionNumber string) (models.RankedStudent, bool) {
	for _, r := range ranked {
		if r.AdmissionNumber == admissionNumber {
			return r, true
		}
	}
	return models.RankedStudent{}, false
}
