package html

import (
	"embed"
	"io"
	"text/template"
)

//go:embed pages/*.html
var files embed.FS

var (
	dashboardTemplate   = parse("pages/dashboard.html")
	applicationTemplate = parse("pages/application.html")
	loginTemplate       = parse("pages/login.html")
)

type ApplicationRow struct {
	Code            string
	Company         string
	Topic           string
	Domain          string
	Status          string
	ApplicationDate string
	InternshipStart string
	LastEmail       string
	Source          string
}

type ChartBar struct {
	Label   string
	Count   int
	Percent int
}

type DashboardParams struct {
	Title  string
	Errors []string
	Flash  string

	Total    int
	Accepted int
	Rejected int
	Pending  int

	Chart []ChartBar
	Rows  []ApplicationRow

	StatusOptions  []string
	DomainOptions  []string
	TopicOptions   []string
	SelectedStatus string
	SelectedDomain string
	SelectedTopic  string

	LastSync string
}

func DashboardPage(w io.Writer, p DashboardParams) error {
	return dashboardTemplate.Execute(w, p)
}

type ApplicationForm struct {
	Code            string
	Company         string
	Topic           string
	Domain          string
	Status          string
	ApplicationDate string
	InternshipStart string
}

type ApplicationParams struct {
	Title         string
	Error         string
	IsNew         bool
	App           ApplicationForm
	StatusOptions []string
}

func ApplicationPage(w io.Writer, p ApplicationParams) error {
	return applicationTemplate.Execute(w, p)
}

type LoginParams struct {
	Title string
	Error string
}

func LoginPage(w io.Writer, p LoginParams) error {
	return loginTemplate.Execute(w, p)
}

func parse(file string) *template.Template {
	return template.Must(
		template.New("layout.html").ParseFS(files, "pages/layout.html", file))
}
