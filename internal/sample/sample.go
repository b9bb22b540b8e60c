// Package sample generates plausible synthetic job records for degenerate-empty
// fallbacks and for seeding fresh installs.
package sample

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atlasjobs/jobdex/internal/models"
)

var titles = []string{
	"Software Engineer", "Frontend Developer", "Backend Developer",
	"Full Stack Developer", "DevOps Engineer", "Data Scientist",
	"Machine Learning Engineer", "AI Specialist", "Cloud Engineer",
	"Mobile Developer", "UI/UX Designer", "Product Manager",
}

var companies = []string{
	"TechCorp", "InnovateSoft", "DataMinds", "CloudNative",
	"MobileTech", "AILabs", "WebSolutions", "DevTeam",
	"SmartSystems", "TechGrowth", "CodeMasters", "DigitalFuture",
}

var locations = []string{
	"Casablanca", "Rabat", "Marrakech", "Tangier", "Fez",
	"Agadir", "Meknes", "Oujda", "Kenitra", "Tetouan",
}

var contractTypes = []string{"CDI", "CDD", "Stage", "Freelance"}

var skillsPool = []string{
	"JavaScript", "TypeScript", "React", "Angular", "Vue.js",
	"Node.js", "Python", "Django", "Flask", "FastAPI",
	"Java", "Spring Boot", "PHP", "Laravel", "Ruby on Rails",
	"C#", ".NET", "Go", "Rust", "Kotlin", "Swift",
	"HTML", "CSS", "SASS", "Docker", "Kubernetes",
	"AWS", "Azure", "GCP", "CI/CD", "Git",
	"SQL", "PostgreSQL", "MySQL", "MongoDB", "Redis",
	"GraphQL", "REST API", "Microservices", "TDD", "Agile",
}

// Generate returns n synthetic job records using rng for all randomness, so
// seeded callers get reproducible batches.
func Generate(rng *rand.Rand, n int) []models.JobRecord {
	jobs := make([]models.JobRecord, 0, n)
	now := time.Now()

	for i := 0; i < n; i++ {
		title := titles[rng.Intn(len(titles))]
		company := companies[rng.Intn(len(companies))]
		location := locations[rng.Intn(len(locations))]
		contractType := contractTypes[rng.Intn(len(contractTypes))]
		remote := rng.Intn(2) == 0

		skills := pickSkills(rng, 3+rng.Intn(5))
		salaryMin := float64(30000 + rng.Intn(50001))
		salaryMax := salaryMin + float64(10000+rng.Intn(30001))
		created := now.AddDate(0, 0, -rng.Intn(31)).Format("2006-01-02")

		var desc strings.Builder
		fmt.Fprintf(&desc, "We are looking for a %s to join our team at %s. ", title, company)
		fmt.Fprintf(&desc, "This is a %s position ", contractType)
		if remote {
			desc.WriteString("with remote work options. ")
		} else {
			desc.WriteString("based in our office. ")
		}
		fmt.Fprintf(&desc, "The ideal candidate will have experience with %s. ", strings.Join(skills[:3], ", "))
		fmt.Fprintf(&desc, "Salary range: %.0f - %.0f MAD.", salaryMin, salaryMax)

		jobs = append(jobs, models.JobRecord{
			ID:             uuid.NewString(),
			Title:          title,
			Company:        company,
			Location:       location,
			ContractType:   contractType,
			RemoteFriendly: remote,
			Skills:         skills,
			SalaryMin:      salaryMin,
			SalaryMax:      salaryMax,
			Created:        created,
			Description:    desc.String(),
			Category:       "Engineering",
			RedirectURL:    fmt.Sprintf("https://example.com/jobs/%d", i),
		})
	}
	return jobs
}

func pickSkills(rng *rand.Rand, n int) []string {
	perm := rng.Perm(len(skillsPool))
	if n > len(perm) {
		n = len(perm)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = skillsPool[perm[i]]
	}
	return out
}
