package handlers

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, authHandler *AuthHandler, taskHandler *TaskHandler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)              // POST /auth/signup
		r.Post("/login", authHandler.Login)                // POST /auth/login
		r.Post("/logout", authHandler.Logout)              // POST /auth/logout
		r.Get("/me", authHandler.Me)                       // GET /auth/me
		r.Post("/reset", authHandler.RequestReset)         // POST /auth/reset
		r.Post("/reset/confirm", authHandler.ConfirmReset) // POST /auth/reset/confirm
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", taskHandler.ListTasks)  // GET /tasks
		r.Post("/", taskHandler.PostTask)  // POST /tasks
		r.Get("/stats", taskHandler.Stats) // GET /tasks/stats

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", taskHandler.GetTask)           // GET /tasks/{id}
			r.Patch("/", taskHandler.UpdateTask)      // PATCH /tasks/{id}
			r.Delete("/", taskHandler.DeleteTask)     // DELETE /tasks/{id}
			r.Post("/toggle", taskHandler.ToggleTask) // POST /tasks/{id}/toggle
		})
	})

	r.Get("/health", taskHandler.HealthCheck)
}
