package access

import "canteen/internal/domain"

// RouteClass groups client routes by audience.
type RouteClass int

const (
	ClassPublic RouteClass = iota
	ClassCustomer
	ClassStaff
	ClassAdmin
)

const (
	RouteLogin          = "login"
	RouteSignup         = "signup"
	RouteForgotPassword = "forgot-password"
	RouteEnterCode      = "enter-code"
	RouteSetNewPassword = "set-new-password"
	RouteDashboard      = "dashboard"
	RouteCart           = "cart"
	RouteStaffDashboard = "staff-dashboard"
	RouteAdminDashboard = "admin-dashboard"
)

var routes = map[string]RouteClass{
	RouteLogin:          ClassPublic,
	RouteSignup:         ClassPublic,
	RouteForgotPassword: ClassPublic,
	RouteEnterCode:      ClassPublic,
	RouteSetNewPassword: ClassPublic,
	RouteDashboard:      ClassCustomer,
	RouteCart:           ClassCustomer,
	RouteStaffDashboard: ClassStaff,
	RouteAdminDashboard: ClassAdmin,
}

// Classify returns the class of a named route.
func Classify(route string) (RouteClass, bool) {
	c, ok := routes[route]
	return c, ok
}

// Session is the client's view of who is signed in. A zero Session is anonymous.
type Session struct {
	UserID   int64
	Username string
	Role     domain.Role
	Token    string
}

func (s Session) SignedIn() bool { return s.Role != "" }

type Decision struct {
	Allow    bool   `json:"allow"`
	Redirect string `json:"redirect,omitempty"`
}

func allow() Decision                { return Decision{Allow: true} }
func redirect(route string) Decision { return Decision{Redirect: route} }

// Home is where a role lands after signing in.
func Home(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return RouteAdminDashboard
	case domain.RoleStaff:
		return RouteStaffDashboard
	default:
		return RouteDashboard
	}
}

// Decide is the navigation guard. Unknown routes are treated as customer routes.
func Decide(s Session, route string) Decision {
	class, ok := Classify(route)
	if !ok {
		class = ClassCustomer
	}

	if class == ClassPublic {
		if s.SignedIn() {
			return redirect(Home(s.Role))
		}
		return allow()
	}
	if !s.SignedIn() {
		return redirect(RouteLogin)
	}

	switch class {
	case ClassCustomer:
		// staff and admin have their own dashboards; the cart stays open to them
		if route == RouteDashboard && s.Role != domain.RoleCustomer {
			return redirect(Home(s.Role))
		}
		return allow()
	case ClassStaff:
		if s.Role == domain.RoleStaff || s.Role == domain.RoleAdmin {
			return allow()
		}
		return redirect(Home(s.Role))
	case ClassAdmin:
		if s.Role == domain.RoleAdmin {
			return allow()
		}
		return redirect(Home(s.Role))
	}
	return redirect(RouteLogin)
}
