package logger

import (
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups non-nil errors under "errors". Returns an empty Attr when all are nil.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error records err under "error". Returns an empty Attr for nil.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the principal identifier. Empty ids produce an empty Attr.
func UserID(id string) slog.Attr {
	return nonEmpty("user_id", id)
}

// TenantID records the resolved tenant identifier.
func TenantID(id string) slog.Attr {
	return nonEmpty("tenant_id", id)
}

// OrganizationID records the resolved organization identifier.
func OrganizationID(id string) slog.Attr {
	return nonEmpty("organization_id", id)
}

// Mode records the tenancy mode.
func Mode(mode string) slog.Attr {
	return nonEmpty("tenant_mode", mode)
}

// Source records where a tenant id was resolved from.
func Source(source string) slog.Attr {
	return nonEmpty("tenant_source", source)
}

// Role records a role name.
func Role(name string) slog.Attr {
	return nonEmpty("role", name)
}

// Permission records the permission being checked.
func Permission(p string) slog.Attr {
	return slog.String("permission", p)
}

// Allowed records an authorization outcome.
func Allowed(ok bool) slog.Attr {
	return slog.Bool("allowed", ok)
}

// RequestID records the request identifier.
func RequestID(id string) slog.Attr {
	return nonEmpty("request_id", id)
}

// Duration records a duration under "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name.
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

func nonEmpty(key, v string) slog.Attr {
	if v == "" {
		return slog.Attr{}
	}
	return slog.String(key, v)
}
