package server

import (
	"html/template"
	"net/http"

	"github.com/certitrack/client-go/users"
)

const layoutHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} | CertiTrack</title>
<style>
body { font-family: system-ui, sans-serif; margin: 0; color: #1f2937; }
header { background: #1d4ed8; color: #fff; padding: 1rem 2rem; display: flex; justify-content: space-between; align-items: center; }
header a { color: #fff; text-decoration: none; margin-left: 1rem; }
main { max-width: 64rem; margin: 2rem auto; padding: 0 1rem; }
.card { border: 1px solid #e5e7eb; border-radius: 0.5rem; padding: 1.25rem; margin: 0.5rem 0; }
.stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(12rem, 1fr)); gap: 1rem; }
.stat-value { font-size: 2rem; font-weight: 700; }
.error { background: #fee2e2; color: #991b1b; padding: 0.75rem; border-radius: 0.375rem; margin-bottom: 1rem; }
form label { display: block; margin: 0.75rem 0 0.25rem; }
form input { width: 100%; max-width: 24rem; padding: 0.5rem; border: 1px solid #d1d5db; border-radius: 0.375rem; }
button { margin-top: 1rem; background: #1d4ed8; color: #fff; border: 0; padding: 0.6rem 1.5rem; border-radius: 0.375rem; cursor: pointer; }
</style>
</head>
<body>
<header>
<strong>CertiTrack</strong>
<nav>
<a href="/">Home</a>
{{if .User}}
<a href="/dashboard">Dashboard</a>
{{if .User.IsAdmin}}<a href="/admin">Admin</a>{{end}}
<form method="post" action="/logout" style="display:inline"><button type="submit">Log out</button></form>
{{else}}
<a href="/login">Log in</a>
<a href="/register">Register</a>
{{end}}
</nav>
</header>
<main>
{{template "content" .}}
</main>
</body>
</html>`

const indexHTML = `{{define "content"}}
<h1>Track certifications before they expire</h1>
<p>CertiTrack keeps personnel, equipment and certification records in
one place and warns you before anything lapses.</p>
<div class="stats">
<div class="card"><h3>Personnel</h3><p>Qualifications and renewal dates per person.</p></div>
<div class="card"><h3>Equipment</h3><p>Inspection and calibration certificates.</p></div>
<div class="card"><h3>Alerts</h3><p>Expiry warnings before they bite.</p></div>
</div>
{{if not .User}}<p><a href="/register">Create an account</a> to get started.</p>{{end}}
{{end}}`

const loginHTML = `{{define "content"}}
<h1>Log in</h1>
{{if .Error}}<div class="error">{{.Error}}</div>{{end}}
<form method="post" action="/login">
<label for="email">Email</label>
<input id="email" name="email" type="email" required value="{{.Email}}">
<label for="password">Password</label>
<input id="password" name="password" type="password" required>
<button type="submit">Log in</button>
</form>
<p>No account? <a href="/register">Register</a>.</p>
{{end}}`

const registerHTML = `{{define "content"}}
<h1>Register</h1>
{{if .Error}}<div class="error">{{.Error}}</div>{{end}}
<form method="post" action="/register">
<label for="firstName">First name</label>
<input id="firstName" name="firstName" required value="{{.FirstName}}">
<label for="lastName">Last name</label>
<input id="lastName" name="lastName" required value="{{.LastName}}">
<label for="email">Email</label>
<input id="email" name="email" type="email" required value="{{.Email}}">
<label for="phone">Phone (optional)</label>
<input id="phone" name="phone" value="{{.Phone}}">
<label for="password">Password</label>
<input id="password" name="password" type="password" required>
<button type="submit">Register</button>
</form>
{{end}}`

const dashboardHTML = `{{define "content"}}
<h1>Welcome back, {{.User.FirstName}}</h1>
<div class="stats">
<div class="card"><div class="stat-value">{{.Stats.Personnel}}</div>Personnel</div>
<div class="card"><div class="stat-value">{{.Stats.Equipment}}</div>Equipment</div>
<div class="card"><div class="stat-value">{{.Stats.Certifications}}</div>Certifications</div>
<div class="card"><div class="stat-value">{{.Stats.ExpiringSoon}}</div>Expiring soon</div>
</div>
<p>Certification records are on their way. This dashboard fills in as
your team adds personnel and equipment.</p>
{{end}}`

const adminHTML = `{{define "content"}}
<h1>Administration</h1>
<p>Signed in as {{.User.FullName}} ({{.User.Email}}).</p>
<div class="card"><h3>User management</h3><p>Invite, deactivate and promote users.</p></div>
<div class="card"><h3>Organisation settings</h3><p>Certification categories and expiry policies.</p></div>
{{end}}`

const accessDeniedHTML = `{{define "content"}}
<h1>Access Denied</h1>
<p>You don't have permission to access this page.</p>
<p><a href="/dashboard">Back to dashboard</a></p>
{{end}}`

// dashboardStats are placeholder figures until the certification
// domain endpoints exist.
type dashboardStats struct {
	Personnel      int
	Equipment      int
	Certifications int
	ExpiringSoon   int
}

type pageData struct {
	Title string
	User  *users.User
	Error string
	Stats dashboardStats

	// Echoed form fields so a failed submit keeps what was typed.
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

func mustPage(content string) *template.Template {
	t := template.Must(template.New("layout").Parse(layoutHTML))
	return template.Must(t.Parse(content))
}

var (
	indexTemplate        = mustPage(indexHTML)
	loginTemplate        = mustPage(loginHTML)
	registerTemplate     = mustPage(registerHTML)
	dashboardTemplate    = mustPage(dashboardHTML)
	adminTemplate        = mustPage(adminHTML)
	accessDeniedTemplate = mustPage(accessDeniedHTML)
)

func (s *Server) render(w http.ResponseWriter, status int, t *template.Template, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		s.log.Error().Err(err).Str("page", data.Title).Msg("rendering template")
	}
}
