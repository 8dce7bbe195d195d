package ports

// ConnectivityMonitor define el puerto de la señal de conectividad que observa
// el coordinador. La implementación por defecto sondea el health del backend;
// cualquier fuente push puede sustituirla detrás de este mismo puerto.
type ConnectivityMonitor interface {
	// Online devuelve el último estado conocido.
	Online() bool
	// Changes emite el nuevo estado en cada transición online/offline.
	Changes() <-chan bool
}
