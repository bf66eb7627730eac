package ingestion

import (
	"regexp"
	"sort"
	"strings"
)

// techTerms is the vocabulary scanned for when a posting lists no keywords.
var techTerms = []string{
	"Go", "Golang", "Python", "Java", "Kotlin", "Scala", "Rust", "C++", "C#", "TypeScript", "JavaScript",
	"Ruby", "PHP", "Swift", "SQL", "GraphQL", "REST", "gRPC",
	"React", "Vue", "Angular", "Next.js", "Node.js", "Django", "Flask", "FastAPI", "Spring", "Rails",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Kafka", "RabbitMQ", "Elasticsearch", "Snowflake",
	"AWS", "GCP", "Azure", "Docker", "Kubernetes", "Terraform", "Ansible", "Linux", "CI/CD",
	"Machine Learning", "LLM", "PyTorch", "TensorFlow", "Spark", "Airflow",
	"Microservices", "Distributed Systems", "Observability", "Prometheus", "Grafana",
}

// Mentions reports whether text contains term as a whole word, ignoring case.
func Mentions(text, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return false
	}
	// \b does not work around symbols like "C++" or "Node.js", so match on
	// non-word neighbours instead.
	pattern := `(?i)(^|[^\p{L}\p{N}])` + regexp.QuoteMeta(term) + `($|[^\p{L}\p{N}])`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return strings.Contains(strings.ToLower(text), strings.ToLower(term))
	}
	return re.MatchString(text)
}

// ExtractKeywords returns the posting's keywords: the explicit ones first,
// followed by known technology terms found in the text. Duplicates are
// removed case-insensitively.
func ExtractKeywords(text string, explicit []string) []string {
	seen := map[string]bool{}
	out := []string{}
	add := func(k string) {
		k = strings.TrimSpace(k)
		key := strings.ToLower(k)
		if k == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, k)
	}

	for _, k := range explicit {
		add(k)
	}

	var found []string
	for _, term := range techTerms {
		if Mentions(text, term) {
			found = append(found, term)
		}
	}
	sort.Strings(found)
	for _, term := range found {
		add(term)
	}
	return out
}
