// Package domain contains the core data model of the ESPRESSO toolkit:
// the feed-event and fly table rows, their fixed column schema, the
// categorical axes built at load time, label specifications and the
// analysis view rows. These types are the single source of truth shared
// by the loader, the bundle format, the exporters and the HTTP API.
package domain
