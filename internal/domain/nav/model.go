package nav

import (
	"strings"

	"activitypass/internal/domain/identity"
	"activitypass/internal/domain/route"
)

// Icon names understood by the presentation layer.
const (
	IconHome       = "home"
	IconCalendar   = "calendar"
	IconDashboard  = "dashboard"
	IconPeople     = "people"
	IconCourses    = "courses"
	IconActivities = "activities"
)

// Greeting period constants, derived from the local hour.
const (
	GreetingMorning   = "morning"
	GreetingAfternoon = "afternoon"
	GreetingEvening   = "evening"
	GreetingNight     = "night"
)

// Link is one navigation entry. LabelKey addresses the localization catalog;
// Label is the untranslated fallback copy.
type Link struct {
	LabelKey string
	Label    string
	To       string
	Icon     string
}

// LinksFor derives the ordered link set for a role. The controller has no
// authority of its own: an unauthenticated requester gets no links at all,
// and link visibility never substitutes for the access guard.
// POST: Returns a fresh slice; callers may not mutate shared state
func LinksFor(role string, hasTokens bool) []Link {
	if !hasTokens {
		return nil
	}
	switch role {
	case identity.RoleAdmin:
		return []Link{
			{LabelKey: "nav.adminDashboard", Label: "Dashboard", To: "/admin", Icon: IconDashboard},
			{LabelKey: "admin.studentsTab", Label: "Students", To: "/admin/students", Icon: IconPeople},
			{LabelKey: "admin.facultyTab", Label: "Faculty", To: "/admin/faculty", Icon: IconPeople},
			{LabelKey: "admin.staffTab", Label: "Staff", To: "/admin/staff", Icon: IconPeople},
			{LabelKey: "admin.coursesTab", Label: "Courses", To: "/admin/courses", Icon: IconCourses},
			{LabelKey: "admin.activitiesTab", Label: "Activities", To: "/admin/activities", Icon: IconActivities},
		}
	case identity.RoleStaff:
		return []Link{
			{LabelKey: "nav.staffDashboard", Label: "Dashboard", To: "/staff", Icon: IconDashboard},
		}
	case identity.RoleStudent:
		return []Link{
			{LabelKey: "nav.studentHome", Label: "Today", To: "/student", Icon: IconHome},
			{LabelKey: "nav.studentCalendar", Label: "Calendar", To: "/student/calendar", Icon: IconCalendar},
		}
	default:
		return []Link{
			{LabelKey: "nav.dashboard", Label: "Dashboard", To: "/", Icon: IconDashboard},
		}
	}
}

// ActiveLink resolves the single active link for the current path using
// longest-prefix match over normalized paths. Ties break toward the more
// specific (longer) matched prefix.
// POST: Returns ("", false) when no link matches or the set is empty
func ActiveLink(links []Link, currentPath string) (string, bool) {
	current := route.NormalizePath(currentPath)
	best := ""
	for _, link := range links {
		target := route.NormalizePath(link.To)
		if current != target && !strings.HasPrefix(current, target+"/") {
			continue
		}
		if len(target) > len(best) {
			best = target
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// IsActive reports whether the given link target is the active one.
func IsActive(links []Link, currentPath, target string) bool {
	active, ok := ActiveLink(links, currentPath)
	return ok && active == route.NormalizePath(target)
}

// ShowBottomNav reports whether the compact bottom navigation renders. This
// is an explicit per-role presentation policy: students only, and only with
// a non-empty link set.
func ShowBottomNav(role string, links []Link) bool {
	return role == identity.RoleStudent && len(links) > 0
}

// ShowLoginCTA reports whether the login call-to-action renders: only for
// anonymous requesters who are not already on the login view.
func ShowLoginCTA(hasTokens bool, currentPath string) bool {
	if hasTokens {
		return false
	}
	current := route.NormalizePath(currentPath)
	return current != route.LoginPath && current != route.LegacyLoginPath
}

// GreetingPeriod buckets the local hour for the navigation greeting.
// PRE: hour is in [0, 23]
func GreetingPeriod(hour int) string {
	switch {
	case hour < 5:
		return GreetingNight
	case hour < 12:
		return GreetingMorning
	case hour < 18:
		return GreetingAfternoon
	case hour < 22:
		return GreetingEvening
	default:
		return GreetingNight
	}
}
