package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/schooldb-api/internal/handler"
	"github.com/noah-isme/schooldb-api/internal/middleware"
	"github.com/noah-isme/schooldb-api/internal/models"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
	"github.com/noah-isme/schooldb-api/pkg/response"
)

// Handlers groups every HTTP handler mounted by Register.
type Handlers struct {
	Auth        *handler.AuthHandler
	Students    *handler.StudentHandler
	Books       *handler.BookHandler
	Circulation *handler.CirculationHandler
	Fees        *handler.FeeHandler
	Performance *handler.PerformanceHandler
	Discipline  *handler.DisciplineHandler
	Rankings    *handler.RankingHandler
	Dashboard   *handler.DashboardHandler
	Exports     *handler.ExportHandler
	Users       *handler.UserHandler
	Metrics     *handler.MetricsHandler
}

// Options carries the cross-cutting dependencies of the router.
type Options struct {
	APIPrefix string
	Auth      gin.HandlerFunc
	Audit     AuditFactory
	Logger    *zap.Logger
}

// AuditFactory builds the audit middleware for one mutating route.
type AuditFactory func(action, resource, idParam string) gin.HandlerFunc

const (
	roleAdmin     = string(models.RoleAdmin)
	roleTeacher   = string(models.RoleTeacher)
	roleLibrarian = string(models.RoleLibrarian)
	roleStudent   = string(models.RoleStudent)
)

// Register mounts health, metrics and the versioned API on r.
func Register(r *gin.Engine, h Handlers, opts Options) {
	if opts.Audit == nil {
		opts.Audit = func(string, string, string) gin.HandlerFunc { return func(c *gin.Context) { c.Next() } }
	}
	audit := opts.Audit

	r.GET("/health", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	api := r.Group(opts.APIPrefix)

	api.POST("/auth/login", h.Auth.Login)
	// signed links are the credential
	api.GET("/photos/:token", h.Students.Photo)

	secured := api.Group("")
	secured.Use(opts.Auth)

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/auth/me", h.Auth.Me)

	staff := middleware.RBAC(roleAdmin, roleTeacher, roleLibrarian)
	registrar := middleware.RBAC(roleAdmin, roleTeacher)
	library := middleware.RBAC(roleAdmin, roleLibrarian)
	adminOnly := middleware.RBAC(roleAdmin)
	staffOrSelf := middleware.RBAC(roleAdmin, roleTeacher, roleLibrarian, middleware.Self)

	students := secured.Group("/students")
	{
		students.GET("", staff, h.Students.List)
		students.GET("/grouped", staff, h.Students.Grouped)
		students.GET("/lookup", staff, h.Students.Lookup)
		students.POST("", registrar, audit(models.AuditActionCreate, "student", ""), h.Students.Create)
		students.GET("/:admission_number", staffOrSelf, h.Students.Get)
		students.PUT("/:admission_number", registrar, audit(models.AuditActionUpdate, "student", "admission_number"), h.Students.Update)
		students.DELETE("/:admission_number", adminOnly, audit(models.AuditActionDelete, "student", "admission_number"), h.Students.Delete)
		students.PUT("/:admission_number/photo", registrar, audit(models.AuditActionUpdate, "student_photo", "admission_number"), h.Students.UploadPhoto)
		students.GET("/:admission_number/photo-link", staffOrSelf, h.Students.PhotoLink)
		students.GET("/:admission_number/dashboard", staffOrSelf, h.Dashboard.Student)
		students.GET("/:admission_number/loans", staffOrSelf, h.Circulation.OnLoan)
	}

	books := secured.Group("/books")
	{
		books.GET("", h.Books.List)
		books.GET("/catalogue", h.Books.Catalogue)
		books.GET("/:id", h.Books.Get)
		books.POST("", library, audit(models.AuditActionCreate, "book", ""), h.Books.Create)
		books.PUT("/:id", library, audit(models.AuditActionUpdate, "book", "id"), h.Books.Update)
		books.DELETE("/:id", library, audit(models.AuditActionDelete, "book", "id"), h.Books.Delete)
	}

	circulation := secured.Group("/library")
	{
		borrowers := middleware.RBAC(roleAdmin, roleLibrarian, roleStudent)
		circulation.POST("/borrow", borrowers, audit(models.AuditActionBorrow, "borrow_record", ""), h.Circulation.Borrow)
		circulation.POST("/return", borrowers, audit(models.AuditActionReturn, "borrow_record", ""), h.Circulation.Return)
		circulation.GET("/records", library, h.Circulation.List)
		circulation.POST("/records", library, audit(models.AuditActionCreate, "borrow_record", ""), h.Circulation.RecordLoan)
	}

	fees := secured.Group("/fees")
	{
		fees.GET("", registrar, h.Fees.List)
		fees.GET("/:id", registrar, h.Fees.Get)
		fees.POST("", adminOnly, audit(models.AuditActionCreate, "fee_record", ""), h.Fees.Create)
		fees.PUT("/:id", adminOnly, audit(models.AuditActionUpdate, "fee_record", "id"), h.Fees.Update)
		fees.DELETE("/:id", adminOnly, audit(models.AuditActionDelete, "fee_record", "id"), h.Fees.Delete)
	}

	performance := secured.Group("/performance")
	performance.Use(registrar)
	{
		performance.GET("", h.Performance.List)
		performance.GET("/:id", h.Performance.Get)
		performance.POST("", audit(models.AuditActionCreate, "performance_record", ""), h.Performance.Create)
		performance.PUT("/:id", audit(models.AuditActionUpdate, "performance_record", "id"), h.Performance.Update)
		performance.DELETE("/:id", audit(models.AuditActionDelete, "performance_record", "id"), h.Performance.Delete)
	}

	discipline := secured.Group("/discipline")
	discipline.Use(registrar)
	{
		discipline.GET("", h.Discipline.List)
		discipline.GET("/:id", h.Discipline.Get)
		discipline.POST("", audit(models.AuditActionCreate, "discipline_record", ""), h.Discipline.Create)
		discipline.PUT("/:id", audit(models.AuditActionUpdate, "discipline_record", "id"), h.Discipline.Update)
		discipline.DELETE("/:id", audit(models.AuditActionDelete, "discipline_record", "id"), h.Discipline.Delete)
	}

	rankings := secured.Group("/rankings")
	rankings.Use(staff)
	{
		rankings.GET("", h.Rankings.Overview)
		rankings.GET("/streams/:stream", h.Rankings.Stream)
	}

	exports := secured.Group("/exports")
	exports.Use(registrar)
	{
		exports.GET("/rankings", h.Exports.Ranking)
		exports.GET("/fees", adminOnly, h.Exports.FeeRegister)
	}

	users := secured.Group("/users")
	users.Use(adminOnly)
	{
		users.POST("", audit(models.AuditActionCreate, "user", ""), h.Users.Create)
		users.GET("/:id", h.Users.Get)
	}

	if opts.Logger != nil {
		opts.Logger.Debug("routes registered", zap.Int("count", len(r.Routes())), zap.String("prefix", opts.APIPrefix))
	}
}
