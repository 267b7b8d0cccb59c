package classify

// Well-known program IDs matched against a transaction's account keys.
const (
	// VoteProgram is the native vote program ID.
	VoteProgram = "Vote111111111111111111111111111111111111111"
	// StakeProgram is the native stake program ID.
	StakeProgram = "Stake11111111111111111111111111111111111111"
	// TokenProgram is the SPL Token program ID.
	TokenProgram = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	// TokenMetadataProgram is the Metaplex token metadata program ID.
	TokenMetadataProgram = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	// SerumDEXV3 is the Serum DEX v3 program ID.
	SerumDEXV3 = "9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP"
	// JupiterV4 is the Jupiter aggregator v4 program ID.
	JupiterV4 = "JUP4Fb2cqiRUcaTHdrPC8h2gNsA2ETXiPDD33WcGuJB"
)
