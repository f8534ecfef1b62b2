package seed

// Employee is a seeded employee and the team it joins ("" for none).
type Employee struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Role           string   `json:"role"`
	Skills         []string `json:"skills"`
	Experience     float64  `json:"experience"`
	Certifications []string `json:"certifications"`
	PastProjects   []string `json:"past_projects"`
	TeamID         string   `json:"-"`
}

// Team is a seeded team. Members and lead are derived from the employees.
type Team struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
	LeadID    string   `json:"lead_id,omitempty"`
}

// Project is a seeded project with the team expected to fit it best.
type Project struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	RequiredSkills     []string `json:"required_skills"`
	RequiredExperience float64  `json:"required_experience"`
	ExpectedTeam       string   `json:"-"`
}

// Dataset is the demo organization: three teams of four, one HR user and
// six projects.
type Dataset struct {
	Teams     []Team
	Employees []Employee
	Projects  []Project
}

// Demo returns the demo dataset with team membership resolved.
func Demo() Dataset {
	d := Dataset{
		Teams: []Team{
			{ID: "ALPHA01", Name: "Alpha Squad"},
			{ID: "BETA02", Name: "Beta Brains"},
			{ID: "GAMMA03", Name: "Gamma Force"},
		},
		Employees: []Employee{
			{ID: "HR001", Name: "Priya Sharma", Email: "hr@klh.com", Role: "hr", Experience: 8,
				Skills:         []string{"Recruitment", "Project Management", "HR Analytics"},
				PastProjects:   []string{"HR Transformation", "Talent Portal"},
				Certifications: []string{"SHRM-CP", "PMP"}},

			{ID: "LEAD001", Name: "Arjun Patel", Email: "arjun@klh.com", Role: "team_lead", Experience: 5, TeamID: "ALPHA01",
				Skills:         []string{"Python", "FastAPI", "Machine Learning", "PostgreSQL", "Docker"},
				PastProjects:   []string{"Recommendation Engine", "Data Pipeline"},
				Certifications: []string{"AWS Certified Developer", "TensorFlow Developer"}},
			{ID: "EMP001", Name: "Meera Krishnan", Email: "meera@klh.com", Role: "employee", Experience: 3.5, TeamID: "ALPHA01",
				Skills:         []string{"React", "TypeScript", "Tailwind CSS", "Next.js", "GraphQL"},
				PastProjects:   []string{"E-commerce UI", "Admin Dashboard"},
				Certifications: []string{"Meta Frontend Developer"}},
			{ID: "EMP002", Name: "Rohit Singh", Email: "rohit@klh.com", Role: "employee", Experience: 4, TeamID: "ALPHA01",
				Skills:         []string{"Python", "Data Analysis", "Pandas", "NumPy", "Tableau"},
				PastProjects:   []string{"Sales Analytics", "Financial Reporting"},
				Certifications: []string{"Google Data Analytics"}},
			{ID: "EMP003", Name: "Kavya Reddy", Email: "kavya@klh.com", Role: "employee", Experience: 2.5, TeamID: "ALPHA01",
				Skills:         []string{"NLP", "spaCy", "BERT", "Python", "scikit-learn"},
				PastProjects:   []string{"Chatbot", "Sentiment Analysis Tool"},
				Certifications: []string{"Hugging Face NLP"}},

			{ID: "LEAD002", Name: "Sameer Nair", Email: "sameer@klh.com", Role: "team_lead", Experience: 6, TeamID: "BETA02",
				Skills:         []string{"Java", "Spring Boot", "Microservices", "Kubernetes", "Kafka"},
				PastProjects:   []string{"Payment Gateway", "Order Management System"},
				Certifications: []string{"Java SE 11", "CKA"}},
			{ID: "EMP004", Name: "Divya Iyer", Email: "divya@klh.com", Role: "employee", Experience: 4, TeamID: "BETA02",
				Skills:         []string{"Angular", "Java", "SQL", "REST APIs", "Azure"},
				PastProjects:   []string{"Banking Portal", "Loan Management"},
				Certifications: []string{"AZ-204"}},
			{ID: "EMP005", Name: "Kiran Mehta", Email: "kiran@klh.com", Role: "employee", Experience: 5.5, TeamID: "BETA02",
				Skills:         []string{"DevOps", "Terraform", "AWS", "CI/CD", "Docker", "Kubernetes"},
				PastProjects:   []string{"Cloud Migration", "Infrastructure Automation"},
				Certifications: []string{"AWS Solutions Architect", "Terraform Associate"}},
			{ID: "EMP006", Name: "Anjali Verma", Email: "anjali@klh.com", Role: "employee", Experience: 3, TeamID: "BETA02",
				Skills:         []string{"QA", "Selenium", "Pytest", "Postman", "JIRA"},
				PastProjects:   []string{"Regression Suite", "API Testing Framework"},
				Certifications: []string{"ISTQB Foundation"}},

			{ID: "LEAD003", Name: "Vikram Das", Email: "vikram@klh.com", Role: "team_lead", Experience: 4.5, TeamID: "GAMMA03",
				Skills:         []string{"React", "Node.js", "MongoDB", "Express", "Redis"},
				PastProjects:   []string{"Social Media App", "Real-time Dashboard"},
				Certifications: []string{"MongoDB Developer"}},
			{ID: "EMP007", Name: "Sneha Pillai", Email: "sneha@klh.com", Role: "employee", Experience: 2, TeamID: "GAMMA03",
				Skills:         []string{"Python", "Flask", "SQL", "Power BI", "Excel"},
				PastProjects:   []string{"Reporting Tool", "KPI Dashboard"},
				Certifications: []string{"Power BI Analyst"}},
			{ID: "EMP008", Name: "Rahul Gupta", Email: "rahul@klh.com", Role: "employee", Experience: 3, TeamID: "GAMMA03",
				Skills:         []string{"React", "Python", "FastAPI", "Docker", "Git"},
				PastProjects:   []string{"Student Portal", "Task Manager"},
				Certifications: []string{"Docker Certified Associate"}},
			{ID: "EMP009", Name: "Pooja Nambiar", Email: "pooja@klh.com", Role: "employee", Experience: 2.5, TeamID: "GAMMA03",
				Skills:         []string{"UI/UX", "Figma", "React", "CSS", "Accessibility"},
				PastProjects:   []string{"Design System", "Mobile Redesign"},
				Certifications: []string{"Google UX Design"}},
		},
		Projects: []Project{
			{ID: "PRJ001", Title: "AI Customer Support Chatbot", ExpectedTeam: "ALPHA01", RequiredExperience: 3,
				Description:    "Build an NLP-powered chatbot to automate customer support tickets. Requires integration with existing CRM using REST APIs.",
				RequiredSkills: []string{"Python", "NLP", "FastAPI", "React", "spaCy"}},
			{ID: "PRJ002", Title: "Cloud-Native Microservices Migration", ExpectedTeam: "BETA02", RequiredExperience: 5,
				Description:    "Migrate monolithic Java application to cloud-native microservices on Kubernetes. Includes CI/CD pipeline setup on Azure DevOps.",
				RequiredSkills: []string{"Java", "Spring Boot", "Kubernetes", "Docker", "Azure", "Kafka"}},
			{ID: "PRJ003", Title: "Real-Time Analytics Dashboard", ExpectedTeam: "GAMMA03", RequiredExperience: 3.5,
				Description:    "Develop a real-time business intelligence dashboard with live data streaming, interactive charts, and role-based access control.",
				RequiredSkills: []string{"React", "Node.js", "Python", "Redis", "PostgreSQL", "Recharts"}},
			{ID: "PRJ004", Title: "Automated Testing Framework", ExpectedTeam: "BETA02", RequiredExperience: 2.5,
				Description:    "Design and implement a comprehensive automated testing framework covering unit, integration, and E2E tests for web applications.",
				RequiredSkills: []string{"Selenium", "Pytest", "Python", "CI/CD", "JIRA"}},
			{ID: "PRJ005", Title: "Machine Learning Recommendation Engine", ExpectedTeam: "ALPHA01", RequiredExperience: 4,
				Description:    "Build a personalized product recommendation system using collaborative filtering and deep learning, served via FastAPI with PostgreSQL backend.",
				RequiredSkills: []string{"Python", "Machine Learning", "FastAPI", "PostgreSQL", "Pandas", "scikit-learn"}},
			{ID: "PRJ006", Title: "Internal HR Portal Redesign", ExpectedTeam: "GAMMA03", RequiredExperience: 2,
				Description:    "Redesign the internal HR portal with modern UI/UX, improved accessibility, and mobile responsiveness using React and Tailwind CSS.",
				RequiredSkills: []string{"React", "Tailwind CSS", "Figma", "UI/UX", "TypeScript"}},
		},
	}

	byID := make(map[string]int, len(d.Teams))
	for i, t := range d.Teams {
		byID[t.ID] = i
	}
	for _, e := range d.Employees {
		i, ok := byID[e.TeamID]
		if !ok {
			continue
		}
		d.Teams[i].MemberIDs = append(d.Teams[i].MemberIDs, e.ID)
		if e.Role == "team_lead" {
			d.Teams[i].LeadID = e.ID
		}
	}
	return d
}
