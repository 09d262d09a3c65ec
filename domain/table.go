package domain

type Table string

const (
	TableEngineEvents Table = "engine_events"
)
