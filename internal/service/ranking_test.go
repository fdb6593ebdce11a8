package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schooldb-api/internal/models"
)

func mark(adm, stream, term string, marks float64) models.PerformanceMark {
	return models.PerformanceMark{AdmissionNumber: adm, FirstName: "First" + adm, LastName: "Last", Stream: stream, Term: term, Marks: marks}
}

func TestAverageByStudentPoolsAllRecords(t *testing.T) {
	rows := []models.PerformanceMark{
		mark("S2", "E", "T1", 70), mark("S2", "E", "T2", 80),
		mark("S1", "E", "T1", 90),
	}
	avgs := AverageByStudent(rows)
	require.Len(t, avgs, 2)
	assert.Equal(t, "S1", avgs[0].AdmissionNumber)
	assert.Equal(t, 90.0, avgs[0].Average)
	assert.Equal(t, "S2", avgs[1].AdmissionNumber)
	assert.Equal(t, 75.0, avgs[1].Average)
	assert.Equal(t, 2, avgs[1].Records)
	assert.Equal(t, "FirstS2 Last", avgs[1].Name)

	assert.Empty(t, AverageByStudent(nil))
}

func TestRankStudentsTieBreakIsDeterministic(t *testing.T) {
	rows := []models.PerformanceMark{
		mark("S3", "E", "T1", 75),
		mark("S1", "E", "T1", 90),
		mark("S2", "E", "T1", 75),
	}
	ranked := RankStudents(AverageByStudent(rows))
	require.Len(t, ranked, 3)
	assert.Equal(t, "S1", ranked[0].AdmissionNumber)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "S2", ranked[1].AdmissionNumber)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, "S3", ranked[2].AdmissionNumber)
	assert.Equal(t, 3, ranked[2].Rank)

	reversed := []models.StudentAverage{ranked[2].StudentAverage, ranked[1].StudentAverage, ranked[0].StudentAverage}
	assert.Equal(t, ranked, RankStudents(reversed))
}

func TestRankStreamIsIndependent(t *testing.T) {
	avgs := AverageByStudent([]models.PerformanceMark{
		mark("S1", "E", "T1", 90),
		mark("S2", "W", "T1", 85),
		mark("S3", "W", "T1", 60),
	})
	west := RankStream(avgs, "W")
	require.Len(t, west, 2)
	assert.Equal(t, "S2", west[0].AdmissionNumber)
	assert.Equal(t, 1, west[0].Rank)

	overall := RankStudents(avgs)
	r, ok := FindRank(overall, "S2")
	require.True(t, ok)
	assert.Equal(t, 2, r.Rank)

	_, ok = FindRank(overall, "S9")
	assert.False(t, ok)
	assert.Empty(t, RankStream(avgs, "N"))
}

func TestStreamAveragesMeanOfMeans(t *testing.T) {
	avgs := AverageByStudent([]models.PerformanceMark{
		mark("S1", "E", "T1", 100), mark("S1", "E", "T2", 100), mark("S1", "E", "T3", 100),
		mark("S2", "E", "T1", 50),
		mark("S3", "W", "T1", 75),
		mark("S4", "N", "T1", 75),
	})
	streams := StreamAverages(avgs)
	require.Len(t, streams, 3)
	// E pools to 87.5 but its mean of student means is 75, tying N and W.
	assert.Equal(t, models.StreamAverage{Stream: "E", Average: 75, Students: 2}, streams[0])
	assert.Equal(t, "N", streams[1].Stream)
	assert.Equal(t, "W", streams[2].Stream)

	streams = StreamAverages(AverageByStudent([]models.PerformanceMark{mark("S1", "E", "T1", 40), mark("S2", "W", "T1", 90)}))
	assert.Equal(t, "W", streams[0].Stream)
}

func TestTermTrendOrderedByLabel(t *testing.T) {
	trend := TermTrend([]models.PerformanceMark{
		mark("S1", "E", "2024-T2", 60),
		mark("S1", "E", "2024-T1", 80),
		mark("S1", "E", "2024-T2", 70),
	})
	assert.Equal(t, []models.TermAverage{{Term: "2024-T1", Average: 80}, {Term: "2024-T2", Average: 65}}, trend)
	assert.Empty(t, TermTrend(nil))
}
