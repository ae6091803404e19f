package router

import (
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableorder/config"
	"github.com/yeremiapane/tableorder/controllers"
	"github.com/yeremiapane/tableorder/metrics"
	"github.com/yeremiapane/tableorder/middlewares"
	"github.com/yeremiapane/tableorder/models"
	"github.com/yeremiapane/tableorder/services"
	"github.com/yeremiapane/tableorder/tabletoken"
	"github.com/yeremiapane/tableorder/utils"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(middlewares.LoggerMiddleware())

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigins))

	// Services
	keys := tabletoken.NewKeyring([]byte(cfg.TableTokenSecret))
	sessions := utils.NewSessionIssuer([]byte(cfg.JWTSecret), cfg.WaiterSessionTTL, cfg.StaffSessionTTL)
	tenants := services.NewTenantResolver(db)
	catalog := services.NewCatalog(db)
	tables := services.NewTableRegistry(db)
	orders := services.NewOrderService(db, keys, catalog)
	feed := services.NewDispatchFeed(db)

	directory := services.NewWaiterDirectory(db, tenants)
	directory.HashCost = cfg.BcryptCost
	directory.PINKey = []byte(cfg.PINLookupKey)
	staff := services.NewStaffAccounts(db)
	staff.HashCost = cfg.BcryptCost

	// Controllers
	guestCtrl := controllers.NewGuestController(orders)
	menuCtrl := controllers.NewMenuController(catalog)
	waiterCtrl := controllers.NewWaiterController(directory, tables, orders, feed, sessions)
	tableCtrl := controllers.NewTableController(tables, keys, cfg.PublicBaseURL)
	rosterCtrl := controllers.NewRosterController(directory)
	userCtrl := controllers.NewUserController(staff, sessions)
	orderCtrl := controllers.NewOrderController(orders)

	loginLimiter := middlewares.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst)

	r.GET("/ping", func(c *gin.Context) {
		utils.RespondJSON(c, http.StatusOK, "pong", nil)
	})
	r.GET("/metrics", metrics.Handler())

	tenant := r.Group("/t/:tenant", middlewares.TenantMiddleware(tenants))
	{
		// Guest
		tenant.GET("/scan", guestCtrl.Scan)
		tenant.GET("/menu", menuCtrl.GetMenu)
		tenant.POST("/orders", guestCtrl.SubmitOrder)
		tenant.GET("/orders/:ref", guestCtrl.GetOrder)

		// Waiter
		tenant.POST("/waiter/login", loginLimiter.RateLimit(), waiterCtrl.Login)
		waiter := tenant.Group("/waiter", middlewares.WaiterAuth(sessions, directory))
		{
			waiter.GET("/orders", waiterCtrl.GetOrders)
			waiter.PATCH("/orders/:order_id", waiterCtrl.AdvanceOrder)
			waiter.GET("/tables", waiterCtrl.GetTables)
			waiter.POST("/tables/:table_id/claim", waiterCtrl.ClaimTable)
			waiter.DELETE("/tables/:table_id/claim", waiterCtrl.ReleaseTable)
		}

		// Staff
		tenant.POST("/staff/login", loginLimiter.RateLimit(), userCtrl.Login)
		staffGroup := tenant.Group("/staff", middlewares.StaffAuth(sessions, staff))
		{
			staffGroup.GET("/profile", userCtrl.GetProfile)

			staffGroup.GET("/tables", tableCtrl.GetAllTables)
			staffGroup.POST("/tables", tableCtrl.CreateTable)
			staffGroup.GET("/tables/:table_id", tableCtrl.GetTable)
			staffGroup.PUT("/tables/:table_id/assign", tableCtrl.AssignTable)
			staffGroup.GET("/tables/:table_id/token", tableCtrl.GetTableToken)
			staffGroup.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

			staffGroup.GET("/waiters", rosterCtrl.GetAllWaiters)
			staffGroup.POST("/waiters", rosterCtrl.CreateWaiter)
			staffGroup.PUT("/waiters/:waiter_id/pin", rosterCtrl.ChangePIN)
			staffGroup.PUT("/waiters/:waiter_id/active", rosterCtrl.SetActive)

			staffGroup.GET("/orders", orderCtrl.GetOpenOrders)
			staffGroup.PATCH("/orders/:order_id", orderCtrl.UpdateOrderStatus)

			admin := staffGroup.Group("", middlewares.RoleCheck(models.RoleAdmin))
			{
				admin.GET("/users", userCtrl.GetAllUsers)
				admin.POST("/users", userCtrl.Register)
			}
		}
	}

	return r
}
