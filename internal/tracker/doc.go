// Package tracker composes the wildlife sighting services into a running
// application. It wires storage, services, the command router, and background
// runners together; business rules live in the service packages below it.
//
// # Package Structure
//
//	internal/tracker/
//	├── application.go      # Application struct, wiring, and lifecycle
//	├── domain/             # Domain models (pure data structures)
//	│   ├── user/           # Accounts and denormalized sighting counters
//	│   ├── sighting/       # Individual wildlife sightings
//	│   ├── species/        # Species catalog entries
//	│   └── ...             # Notifications, reports, leaderboard rows
//	├── storage/            # Storage interfaces and implementations
//	│   ├── interfaces.go   # Store interfaces (UserStore, SightingStore, etc.)
//	│   ├── memory/         # In-memory implementation for testing
//	│   └── postgres/       # PostgreSQL implementation for production
//	├── services/           # Business logic, one package per concern
//	├── command/            # Envelope-based command dispatch
//	├── httpapi/            # HTTP handlers and routing
//	├── middleware/         # Auth, CORS, and rate limiting
//	├── auth/               # JWT issuing and verification
//	├── system/             # Background service lifecycle
//	└── metrics/            # Prometheus instrumentation
//
// The Application accepts any combination of store implementations through
// the Stores struct; fields left nil fall back to a shared in-memory store,
// which keeps tests and local development free of external dependencies.
package tracker
