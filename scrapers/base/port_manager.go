package base

import (
	"fmt"
	"sync"
)

// PortManager hands out local ports for chromedriver instances
type PortManager struct {
	basePort  int
	portRange int
	inUse     map[int]bool
	mutex     sync.Mutex
}

var chromeDriverPorts = NewPortManager(4444, 16)

// NewPortManager creates a manager for ports basePort..basePort+portRange-1
func NewPortManager(basePort, portRange int) *PortManager {
	return &PortManager{
		basePort:  basePort,
		portRange: portRange,
		inUse:     make(map[int]bool, portRange),
	}
}

// Acquire reserves the lowest free port
func (pm *PortManager) Acquire() (int, error) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	for port := pm.basePort; port < pm.basePort+pm.portRange; port++ {
		if !pm.inUse[port] {
			pm.inUse[port] = true
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available ports in range %d-%d", pm.basePort, pm.basePort+pm.portRange-1)
}

// Release returns port to the pool
func (pm *PortManager) Release(port int) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	delete(pm.inUse, port)
}
