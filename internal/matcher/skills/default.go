package skills

// DefaultSkills is the built-in vocabulary used when no taxonomy file is
// configured.
var DefaultSkills = []string{
	"python", "java", "c++", "c#", "javascript", "sql", "react", "node.js",
	"web design", "design thinking", "wireframe creation", "front end coding",
	"backend tech", "ad-serving platform", "classroom management",
	"database administration", "problem-solving", "computer literacy",
	"project management tools", "communication",
}

// DefaultIgnore lists generic job-posting words never reported as missing.
var DefaultIgnore = []string{
	"professional", "experience", "senior", "lead", "manager", "year", "work",
	"excellent", "strong", "mandatory", "seeking", "qualified", "plus",
}

// DefaultTaxonomy builds a Taxonomy from DefaultSkills and DefaultIgnore.
func DefaultTaxonomy() *Taxonomy {
	t, err := NewTaxonomy(DefaultSkills, DefaultIgnore)
	if err != nil {
		panic("skills: invalid default taxonomy: " + err.Error())
	}
	return t
}
