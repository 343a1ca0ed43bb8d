// devstop - stops running Dev instances outside business hours.
package main

func main() {
	Execute()
}
