package domain

// Estados del coordinador de sincronización.
const (
	SyncStateOffline = "offline" // backend inalcanzable; las mutaciones se encolan
	SyncStateSyncing = "syncing" // ciclo en curso: fetch de colecciones + drenado de la cola
	SyncStateIdle    = "idle"    // último ciclo completo; snapshot y cola al día
)
