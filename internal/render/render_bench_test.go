package render

import "testing"

var benchmarkContent = "# Attachments\n\n" +
	"I received your files. How can I help you with them?\n\n" +
	"- **report.pdf** (1.5 MB)\n" +
	"- photo.png (2 KB)\n\n" +
	"```go\n" +
	"reply, err := sim.Respond(ctx, text)\n" +
	"```\n\n" +
	":smile: :rocket:\n"

func BenchmarkRenderer_Cold(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := New(DefaultOptions()).Markdown(benchmarkContent, 80); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRenderer_Pooled(b *testing.B) {
	r := New(DefaultOptions())
	if _, err := r.Markdown(benchmarkContent, 80); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := r.Markdown(benchmarkContent, 80); err != nil {
				b.Fatal(err)
			}
		}
	})
}
