package commands

// AppendToFile exports appendToFile for testing.
var AppendToFile = appendToFile //nolint:gochecknoglobals // test export

// ControlMarker exports controlMarker for testing.
const ControlMarker = controlMarker
