package transport

import "net/http"

// HookedWriter вызывает beforeWrite один раз, непосредственно перед отправкой заголовков
type HookedWriter struct {
	http.ResponseWriter
	beforeWrite func(http.ResponseWriter)
	done        bool
}

func NewHookedWriter(w http.ResponseWriter, beforeWrite func(http.ResponseWriter)) *HookedWriter {
	return &HookedWriter{ResponseWriter: w, beforeWrite: beforeWrite}
}

func (h *HookedWriter) run() {
	if h.done {
		return
	}
	h.done = true
	h.beforeWrite(h.ResponseWriter)
}

func (h *HookedWriter) WriteHeader(statusCode int) {
	h.run()
	h.ResponseWriter.WriteHeader(statusCode)
}

func (h *HookedWriter) Write(b []byte) (int, error) {
	h.run()
	return h.ResponseWriter.Write(b)
}

// Finish вызывается после обработчика: срабатывает хук, если ответ пустой
func (h *HookedWriter) Finish() {
	h.run()
}

// Unwrap нужен http.ResponseController
func (h *HookedWriter) Unwrap() http.ResponseWriter {
	return h.ResponseWriter
}
