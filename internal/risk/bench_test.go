package risk

import (
	"math/rand"
	"testing"
	"time"
)

func BenchmarkComputeBatchRiskScores(b *testing.B) {
	e := newTestEngine()
	incidents := randomIncidents(rand.New(rand.NewSource(1)), 500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.ComputeBatchRiskScores(incidents)
	}
}

func BenchmarkComputeIndexedBatchRiskScores(b *testing.B) {
	e := newTestEngine()
	incidents := randomIncidents(rand.New(rand.NewSource(1)), 500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.ComputeIndexedBatchRiskScores(incidents)
	}
}

func BenchmarkComputeIndexedBatchRiskScores_LargeRadius(b *testing.B) {
	cfg := DefaultConfig()
	cfg.NeighborRadiusKm = 200
	e := NewEngine(cfg).WithNow(func() time.Time { return fixedNow })
	incidents := spreadIncidents(rand.New(rand.NewSource(1)), 500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.ComputeIndexedBatchRiskScores(incidents)
	}
}

func BenchmarkComputeRiskScore(b *testing.B) {
	e := newTestEngine()
	incidents := randomIncidents(rand.New(rand.NewSource(1)), 200)
	target := incidents[0]
	neighbors := e.FindNeighbors(target, incidents, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.ComputeRiskScore(target, neighbors)
	}
}
