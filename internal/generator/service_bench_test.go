package generator

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-press/internal/logging"
)

func BenchmarkBuildSequential(b *testing.B) {
	benchmarkBuild(b, 1)
}

func BenchmarkBuildConcurrent(b *testing.B) {
	benchmarkBuild(b, 4)
}

func benchmarkBuild(b *testing.B, workers int) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	fixture := newBuildFixture(b, now)
	fixture.Config.Workers = workers

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		svc := NewService(fixture.Config, Dependencies{
			Posts:    fixture.Posts,
			Renderer: &recordingRenderer{},
			Storage:  newRecordingStorage(),
			Logger:   logging.NoOp(),
		}).(*service)
		svc.now = func() time.Time { return now }

		if _, err := svc.Build(ctx, BuildOptions{}); err != nil {
			b.Fatalf("benchmark build: %v", err)
		}
	}
}
