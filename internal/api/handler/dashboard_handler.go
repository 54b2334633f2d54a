package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mesi0621/storefront-gateway/internal/core/domain"
)

// DashboardHandler serves one dashboard descriptor parameterized by the
// caller's role and permissions, instead of a separate near-identical
// dashboard per role. The client renders sections conditionally from the
// capability list.
type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

type dashboardResponse struct {
	Role     string   `json:"role"`
	Username string   `json:"username"`
	Sections []string `json:"sections"`
}

// sectionGrants maps dashboard sections to the capability that unlocks them.
// Admin sees everything via the permission short-circuit.
var sectionGrants = []struct {
	section  string
	resource string
	action   string
}{
	{"orders", "orders", "view"},
	{"products", "products", "manage"},
	{"deliveries", "deliveries", "view"},
	{"support-tickets", "support", "view"},
	{"finance", "finance", "view"},
	{"users", "users", "manage"},
}

// View returns the dashboard sections the current identity may see.
//
// @Summary      Role-aware dashboard descriptor
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Failure      403  {object}  map[string]string
// @Router       /dashboard [get]
func (h *DashboardHandler) View(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}

	identity := s.Access.Current()
	sections := make([]string, 0, len(sectionGrants))
	for _, g := range sectionGrants {
		if s.Access.CanAccess(g.resource, g.action) {
			sections = append(sections, g.section)
		}
	}

	return c.JSON(http.StatusOK, dashboardResponse{
		Role:     string(identity.Role),
		Username: identity.Username,
		Sections: sections,
	})
}

type financeSummaryResponse struct {
	Role  string `json:"role"`
	Scope string `json:"scope"`
}

// Finance is the permission-gated finance panel. The route guard already
// requires finance.view; the handler only distinguishes own vs all scope.
//
// @Summary      Finance panel
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  financeSummaryResponse
// @Failure      403  {object}  map[string]string
// @Router       /dashboard/finance [get]
func (h *DashboardHandler) Finance(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}

	scope := domain.ScopeOwn
	if s.Access.CanAccessScoped("finance", "view", domain.ScopeAll) {
		scope = domain.ScopeAll
	}
	return c.JSON(http.StatusOK, financeSummaryResponse{
		Role:  string(s.Access.Current().Role),
		Scope: string(scope),
	})
}
