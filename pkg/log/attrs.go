package log

import "log/slog"

func RunID[T ~string](id T) slog.Attr {
	return slog.String("run_id", string(id))
}

func PlanID[T ~string](id T) slog.Attr {
	return slog.String("plan_id", string(id))
}

func Action[T ~string](action T) slog.Attr {
	return slog.String("action", string(action))
}

func Category[T ~string](category T) slog.Attr {
	return slog.String("category", string(category))
}

func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
