// Package discovery locates instruments on the local network via mDNS.
//
// LXI-class instruments advertise their raw socket interface as
// _scpi-raw._tcp (and the instrument itself as _lxi._tcp). Browse
// watches both service types and reports each instrument once,
// aggregating addresses seen on multiple interfaces. The reported
// address plugs straight into transport.Dial.
package discovery
