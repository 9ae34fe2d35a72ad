package main

import (
	"github.com/sirupsen/logrus"

	darwin "github.com/darwin-filters/darwin-go"
	"github.com/darwin-filters/darwin-go/protocol"
)

func main() {
	client, err := darwin.Connect(darwin.Config{
		SocketType: "tcp",
		SocketHost: "10.59.10.28",
		SocketPort: 8006,
	})
	if err != nil {
		logrus.Fatal(err)
	}
	defer client.Close()

	result, err := client.Call([]interface{}{"google.com"}, darwin.CallOptions{
		Filter:       "dga",
		ResponseType: protocol.ResponseBack,
	})
	if err != nil {
		logrus.Fatal(err)
	}
	if result == nil {
		logrus.Info("no certitude returned")
		return
	}

	if result.Failed() {
		logrus.Warnf("the dga filter could not evaluate the domain (certitude %d)", result.Certitude)
	} else {
		logrus.Infof("dga certitude: %d", result.Certitude)
	}
}
