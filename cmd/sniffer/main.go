// The sniffer command captures live Item Wars protocol traffic on a network
// device and prints a running decode of the requests and responses, which is
// handy for debugging client synchronization issues without instrumenting
// either side.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

var (
	device  = flag.String("d", "en0", "Device on which to listen for packets")
	port    = flag.Int("p", 13000, "UDP port the game server is listening on")
	verbose = flag.Bool("v", false, "Dump the fully decoded contents of every packet")
)

func main() {
	flag.Parse()

	if getDeviceIP() == "" {
		exit("invalid device: %s", *device)
	}

	handle, err := pcap.OpenLive(*device, math.MaxInt32, false, pcap.BlockForever)
	if err != nil {
		exit("error opening handle: %v", err)
	}
	if err = handle.SetBPFFilter(fmt.Sprintf("udp and port %d", *port)); err != nil {
		exit("error setting packet filter: %v", err)
	}

	s := &sniffer{gamePort: uint16(*port), verbose: *verbose}

	packetSource := gopacket.NewPacketSource(handle, handle.LinkType())
	s.startReading(packetSource.Packets())
}

func exit(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
	os.Exit(1)
}

func getDeviceIP() string {
	devs, _ := pcap.FindAllDevs()
	for _, dev := range devs {
		if dev.Name == *device {
			for _, address := range dev.Addresses {
				return address.IP.String()
			}
		}
	}
	return ""
}
