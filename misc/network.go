package misc

import (
	"errors"
	"fmt"
	"net"
)

func GetFreePort(host string) (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}

	port := l.Addr().(*net.TCPAddr).Port

	err = l.Close()
	if err != nil {
		return 0, err
	}

	return port, nil
}

// GetFreeAddresses reserves count distinct host:port addresses. The ports are released before returning so a
// concurrently started program may still take one.
func GetFreeAddresses(host string, count int) ([]string, error) {
	addresses := make([]string, 0, count)
	seen := make(map[int]bool)
	for len(addresses) < count {
		port, err := GetFreePort(host)
		if err != nil {
			return nil, fmt.Errorf("unable to find a free port on %s - %w", host, err)
		}
		if seen[port] {
			continue
		}
		seen[port] = true
		addresses = append(addresses, net.JoinHostPort(host, fmt.Sprint(port)))
	}
	return addresses, nil
}

func GetLocalAddress() (string, error) {
	networkInterfaces, err := net.Interfaces()
	if err != nil {
		return "", errors.New("failed to find network interface on this device")
	}

	// Attempt to find the first non-loop back network interface with an IP address
	for _, elt := range networkInterfaces {
		if elt.Flags&net.FlagLoopback == 0 && elt.Flags&net.FlagUp != 0 {
			address, err := elt.Addrs()
			if err != nil {
				return "", errors.New("failed to get an address form the network interface")
			}

			for _, addr := range address {
				if ip, ok := addr.(*net.IPNet); ok {
					if ip4 := ip.IP.To4(); len(ip4) == net.IPv4len {
						return ip4.String(), nil
					}
				}
			}
		}
	}

	return "", errors.New("failed to find a non-loopback interface with valid address on this device")
}
