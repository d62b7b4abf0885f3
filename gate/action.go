package gate

// Action is the kind of operation being authorized.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
)

// Resource type names registered by the application.
const (
	ResourceClient  = "client"
	ResourceTask    = "task"
	ResourceProfile = "profile"
)
