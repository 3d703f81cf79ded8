package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-shop-api/internal/config"
	"github.com/iliyamo/online-shop-api/internal/database"
	"github.com/iliyamo/online-shop-api/internal/handler"
	"github.com/iliyamo/online-shop-api/internal/middleware"
	"github.com/iliyamo/online-shop-api/internal/model"
	"github.com/iliyamo/online-shop-api/internal/queue"
	"github.com/iliyamo/online-shop-api/internal/repository"
	"github.com/iliyamo/online-shop-api/internal/router"
	"github.com/iliyamo/online-shop-api/internal/utils"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	tokens := repository.NewTokenRepo(db)
	products := repository.NewProductRepo(db)
	orders := repository.NewOrderRepo(db)

	if err := seed(ctx, cfg, users, roles); err != nil {
		log.Fatalf("seed: %v", err)
	}

	// Redis backs the rate limiter and the product response cache. A nil
	// client turns both middlewares into pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and response cache disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewFixedWindow(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e, router.Deps{
		Cfg:      cfg,
		Users:    users,
		Roles:    roles,
		Auth:     handler.NewAuthHandler(cfg, users, tokens),
		User:     handler.NewUserHandler(cfg, users, roles),
		Product:  handler.NewProductHandler(products),
		Order:    handler.NewOrderHandler(orders, products),
		CacheGET: middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	})

	// Consume order.placed events in the background for the audit log.
	go queue.StartOrderPlacedConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// seed inserts the role rows and the two bootstrap accounts. Everything is
// idempotent: existing rows are left untouched, so restarting the server
// never duplicates or resets data.
func seed(ctx context.Context, cfg config.Config, users *repository.UserRepo, roles *repository.RoleRepo) error {
	if err := roles.Seed(ctx); err != nil {
		return err
	}
	accounts := []struct {
		name, email, password string
		roleID                uint8
	}{
		{"Admin", "admin@example.com", "admin123", model.RoleAdminID},
		{"Customer", "customer@example.com", "customer123", model.RoleCustomerID},
	}
	for _, a := range accounts {
		u, err := users.GetByEmail(ctx, a.email)
		switch {
		case err == nil:
			// Account exists; make sure the role assignment does too.
		case errors.Is(err, repository.ErrUserNotFound):
			hash, herr := utils.HashPassword(a.password, cfg.BcryptCost)
			if herr != nil {
				return herr
			}
			u, err = users.Create(ctx, a.name, a.email, hash)
			if err != nil {
				return err
			}
			log.Printf("seeded account %s", a.email)
		default:
			return err
		}
		if err := roles.Assign(ctx, u.ID, a.roleID); err != nil {
			return err
		}
	}
	return nil
}
