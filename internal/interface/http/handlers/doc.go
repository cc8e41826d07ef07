// Package handlers contains HTTP handler interfaces, implementations, and middleware.
//
// This package provides:
//   - Health check interfaces and implementations
//   - Reusable middleware components
//   - Authentication middleware
//
// # Health Checks
//
// The HealthChecker interface allows registering multiple named health checks
// that are executed in parallel:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCheck("database", handlers.NewDatabaseCheck(db))
//	checker.AddCheck("cache", handlers.NewCacheCheck(cache))
//	checker.AddCheck("match_rpc", handlers.NewExternalAPICheck(rpcClient))
//
//	status := checker.Check(ctx)
//	if !status.Healthy {
//	    log.Printf("Health check failed: %s", status.Message)
//	}
//
// # Middleware
//
// Middleware components wrap http.Handler and can be composed:
//
//	auth := handlers.NewAPIKeyAuth("X-API-Key", []string{"secret"})
//	handler = auth.Middleware(handler)
//	handler = handlers.TimeoutMiddleware(10 * time.Second)(handler)
package handlers
