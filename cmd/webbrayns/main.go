// Command webbrayns serves the circuit, filesystem and Phaneron RPC
// endpoints used by the Brayns web client.
package main

func main() {
	Execute()
}
