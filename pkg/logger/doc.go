// Package logger builds *slog.Logger instances for tenantkit services.
//
// New returns a logger configured by functional options: output format,
// minimum level, static attributes and ContextExtractor callbacks that copy
// request-scoped values (principal, tenant, mode) from context.Context into
// every record.
//
// Attribute helpers in attr.go keep key names consistent across packages so
// that tenant resolution, authorization decisions and support-access audit
// lines can be correlated by the same fields.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "tenantd"),
//	    logger.WithContextExtractors(identity.LoggerExtractor(), tenant.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "permission denied",
//	    logger.Permission("billing.refund"),
//	    logger.Role(role.Name),
//	)
package logger
