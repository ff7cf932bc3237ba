package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"hrpipeline/internal/domain/role"
	"hrpipeline/internal/http/handlers"
	"hrpipeline/internal/http/metrics"
	httpmw "hrpipeline/internal/http/middleware"
)

type RouterDependencies struct {
	AuthHandler         *handlers.AuthHandler
	RecruitmentHandler  *handlers.RecruitmentHandler
	AdmissionHandler    *handlers.AdmissionHandler
	CollaboratorHandler *handlers.CollaboratorHandler
	RoleHandler         *handlers.RoleHandler
	AuditLogHandler     *handlers.AuditLogHandler
	NotificationHandler *handlers.NotificationHandler
	MetricsHandler      *metrics.Handler
	AuthMiddleware      *httpmw.AuthMiddleware
	Metrics             *metrics.Collector
	Logger              *logrus.Logger
	RateLimiter         httpmw.Limiter
	RateLimit           int
	RateWindow          time.Duration
	RequestTimeout      time.Duration
}

type Router struct {
	deps RouterDependencies
}

const maxBodyBytes = 1 << 20

func NewRouter(deps RouterDependencies) http.Handler {
	return &Router{deps: deps}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := httpmw.Chain(r.baseHandler(),
		httpmw.RequestID,
		httpmw.Logging(r.deps.Logger),
		httpmw.BodyLimit(maxBodyBytes),
		httpmw.Recover(r.deps.Logger),
		httpmw.Metrics(r.deps.Metrics),
		httpmw.RateLimit(r.deps.RateLimiter, httpmw.ClientIP, r.deps.RateLimit, r.deps.RateWindow),
		httpmw.Timeout(r.deps.RequestTimeout),
	)
	handler.ServeHTTP(w, req)
}

func (r *Router) baseHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path

		switch {
		case req.Method == http.MethodGet && path == "/health":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		case req.Method == http.MethodGet && path == "/metrics":
			r.deps.MetricsHandler.ServeHTTP(w, req)
			return
		case req.Method == http.MethodPost && path == "/auth/token":
			r.deps.AuthHandler.IssueToken(w, req)
			return
		}

		if hasAnyPrefix(path, "/jobs", "/contracts", "/collaborators", "/talent-pool",
			"/declined-profiles", "/terminated-profiles", "/roles", "/users", "/audit-logs", "/notifications") {
			protected := r.deps.AuthMiddleware.Authenticate(http.HandlerFunc(r.handleProtected))
			protected.ServeHTTP(w, req)
			return
		}

		http.NotFound(w, req)
	})
}

func (r *Router) handleProtected(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path
	segments := len(pathParts(path))
	require := r.deps.AuthMiddleware.RequirePermission

	switch {
	case req.Method == http.MethodPost && path == "/jobs":
		require(role.PermManageRecruitment)(http.HandlerFunc(r.deps.RecruitmentHandler.CreateJobOpening)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/jobs":
		r.deps.RecruitmentHandler.ListJobOpenings(w, req)
		return
	case req.Method == http.MethodPost && path == "/jobs/description-suggestion":
		require(role.PermManageRecruitment)(http.HandlerFunc(r.deps.RecruitmentHandler.SuggestDescription)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/jobs/") && strings.HasSuffix(path, "/interview-questions"):
		require(role.PermManageRecruitment)(http.HandlerFunc(r.deps.RecruitmentHandler.SuggestInterviewQuestions)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/jobs/") && strings.HasSuffix(path, "/recruiter"):
		require(role.PermManageRecruitment)(http.HandlerFunc(r.deps.RecruitmentHandler.AssignRecruiter)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/jobs/") && strings.HasSuffix(path, "/status") && strings.Contains(path, "/candidates/"):
		require(role.PermManageRecruitment)(http.HandlerFunc(r.deps.RecruitmentHandler.SetCandidateStatus)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/jobs/") && strings.HasSuffix(path, "/candidates"):
		require(role.PermManageRecruitment)(http.HandlerFunc(r.deps.RecruitmentHandler.AddCandidate)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/jobs/") && strings.HasSuffix(path, "/candidates"):
		r.deps.RecruitmentHandler.ListCandidates(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/jobs/") && segments == 2:
		r.deps.RecruitmentHandler.GetJobOpening(w, req)
		return

	case req.Method == http.MethodGet && path == "/contracts":
		require(role.PermManageContracts)(http.HandlerFunc(r.deps.AdmissionHandler.ListContracts)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/contracts/") && strings.HasSuffix(path, "/admission"):
		require(role.PermManageContracts)(http.HandlerFunc(r.deps.AdmissionHandler.FillAdmissionForm)).ServeHTTP(w, req)
		return

	case req.Method == http.MethodGet && path == "/collaborators":
		require(role.PermViewCollaborators)(http.HandlerFunc(r.deps.CollaboratorHandler.List)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/collaborators/") && strings.HasSuffix(path, "/history"):
		require(role.PermViewCollaborators)(http.HandlerFunc(r.deps.CollaboratorHandler.History)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/collaborators/") && strings.HasSuffix(path, "/status"):
		require(role.PermManageCollaborators)(http.HandlerFunc(r.deps.CollaboratorHandler.SetStatus)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/collaborators/") && strings.HasSuffix(path, "/decline"):
		require(role.PermManageCollaborators)(http.HandlerFunc(r.deps.CollaboratorHandler.Decline)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/collaborators/") && strings.HasSuffix(path, "/transfer"):
		require(role.PermManageCollaborators)(http.HandlerFunc(r.deps.CollaboratorHandler.Transfer)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/collaborators/") && strings.HasSuffix(path, "/terminate"):
		require(role.PermManageCollaborators)(http.HandlerFunc(r.deps.CollaboratorHandler.Terminate)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/collaborators/") && segments == 2:
		require(role.PermViewCollaborators)(http.HandlerFunc(r.deps.CollaboratorHandler.Get)).ServeHTTP(w, req)
		return

	case req.Method == http.MethodGet && path == "/talent-pool":
		require(role.PermViewTalentPool)(http.HandlerFunc(r.deps.RecruitmentHandler.ListTalentPool)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/declined-profiles":
		require(role.PermViewCollaborators)(http.HandlerFunc(r.deps.CollaboratorHandler.ListDeclined)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/terminated-profiles":
		require(role.PermViewTerminated)(http.HandlerFunc(r.deps.CollaboratorHandler.ListTerminated)).ServeHTTP(w, req)
		return

	case req.Method == http.MethodPost && path == "/roles/assign":
		require(role.PermManagePermissions)(http.HandlerFunc(r.deps.RoleHandler.Assign)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && path == "/roles":
		require(role.PermManagePermissions)(http.HandlerFunc(r.deps.RoleHandler.Create)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/roles":
		require(role.PermManagePermissions)(http.HandlerFunc(r.deps.RoleHandler.List)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/roles/"):
		require(role.PermManagePermissions)(http.HandlerFunc(r.deps.RoleHandler.Update)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodDelete && strings.HasPrefix(path, "/roles/"):
		require(role.PermManagePermissions)(http.HandlerFunc(r.deps.RoleHandler.Delete)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/users":
		require(role.PermManagePermissions)(http.HandlerFunc(r.deps.RoleHandler.ListUsers)).ServeHTTP(w, req)
		return

	case req.Method == http.MethodGet && path == "/audit-logs":
		require(role.PermViewAuditLogs)(http.HandlerFunc(r.deps.AuditLogHandler.List)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/notifications":
		r.deps.NotificationHandler.List(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/notifications/") && strings.HasSuffix(path, "/read"):
		r.deps.NotificationHandler.MarkRead(w, req)
		return
	}

	http.NotFound(w, req)
}

func hasAnyPrefix(path string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func pathParts(path string) []string {
	return strings.FieldsFunc(path, func(c rune) bool { return c == '/' })
}
