package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// The readiness probe runs on every scrape interval, so its cost matters
// more than the rest of this package.

func BenchmarkCheckLiveness(b *testing.B) {
	checker := New(time.Second)
	ctx := context.Background()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = checker.CheckLiveness(ctx)
	}
}

func BenchmarkCheckReadiness(b *testing.B) {
	healthy := func(ctx context.Context) error { return nil }
	failing := func(ctx context.Context) error { return errors.New("circuits open") }

	cases := []struct {
		name  string
		setup func(*Checker)
	}{
		{name: "no_checks", setup: func(c *Checker) {}},
		{name: "one_check", setup: func(c *Checker) {
			c.RegisterCheck("providers", healthy)
		}},
		{name: "five_checks", setup: func(c *Checker) {
			for i := 0; i < 5; i++ {
				c.RegisterCheck(fmt.Sprintf("component%d", i), healthy)
			}
		}},
		{name: "failing_check", setup: func(c *Checker) {
			c.RegisterCheck("providers", failing)
		}},
	}

	for _, bc := range cases {
		b.Run(bc.name, func(b *testing.B) {
			checker := New(time.Second)
			bc.setup(checker)
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = checker.CheckReadiness(ctx)
			}
		})
	}
}

func BenchmarkCheckReadiness_Parallel(b *testing.B) {
	checker := New(time.Second)
	checker.RegisterCheck("providers", func(ctx context.Context) error { return nil })
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = checker.CheckReadiness(ctx)
		}
	})
}

func BenchmarkLivenessHandler(b *testing.B) {
	handler := New(time.Second).LivenessHandler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		handler(rec, req)
	}
}

func BenchmarkReadinessHandler(b *testing.B) {
	checker := New(time.Second)
	checker.RegisterCheck("providers", func(ctx context.Context) error { return nil })
	handler := checker.ReadinessHandler()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		handler(rec, req)
	}
}
