package model

// LogChannel identifies which stream a log line came from.
type LogChannel int8

const (
	LogChannelUnknown LogChannel = 0
	LogChannelStdout  LogChannel = 1
	LogChannelStderr  LogChannel = 2
)

// Logs bundles log entries with the containers they were read from.
type Logs struct {
	Logs       []LogEntry  `json:"logs"`
	Containers []Container `json:"containers"`
}

// LogEntry is a single timestamped log line.
type LogEntry struct {
	Timestamp   int64      `json:"timestamp"`
	Channel     LogChannel `json:"channel"`
	Message     string     `json:"message,omitempty"`
	ContainerID string     `json:"container_id,omitempty"`
}
