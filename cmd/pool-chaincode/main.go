package main

import (
	"log"

	"github.com/V19Amit/Decentralized-Insurance-Pool/chaincode"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

func main() {
	poolChaincode, err := contractapi.NewChaincode(&chaincode.InsurancePool{})
	if err != nil {
		log.Panicf("Error creating insurance pool chaincode: %v", err)
	}

	if err := poolChaincode.Start(); err != nil {
		log.Panicf("Error starting insurance pool chaincode: %v", err)
	}
}
