// Package ticket defines the support-ticket domain model and the Store
// persistence interface shared by the workflow, API, and storage backends.
package ticket
