package scorer

import (
	"strings"
	"testing"
)

func BenchmarkScore(b *testing.B) {
	s := newDefaultScorer()
	resume := strings.Repeat("Python developer with React, SQL and communication skills. ", 50)
	jd := strings.Repeat("Looking for Python, React, and Node.js experience, problem-solving skills required. ", 20)
	b.ReportAllocs()
	b.SetBytes(int64(len(resume) + len(jd)))
	for i := 0; i < b.N; i++ {
		_ = s.Score(resume, jd)
	}
}

func BenchmarkScoreParallel(b *testing.B) {
	s := newDefaultScorer()
	resume := "Senior engineer: Java, C++, SQL, database administration, web design"
	jd := "Seeking Java and C# engineer with database administration and communication"
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = s.Score(resume, jd)
		}
	})
}
