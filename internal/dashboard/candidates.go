package dashboard

// WalletCandidate is an address checked for a whale-sized balance.
type WalletCandidate struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// TokenCandidate is a mint whose supply is shown in the token list.
type TokenCandidate struct {
	Mint   string `json:"address"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// DefaultWallets are known exchange, staking, fund and estate wallets.
var DefaultWallets = []WalletCandidate{
	{Address: "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", Name: "Binance Main"},
	{Address: "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1", Name: "Binance Hot Wallet"},
	{Address: "H8sMJSCQxfKiFTCfDR3DUMLPwcRbM61LGFJ8N4dK3WjS", Name: "Coinbase"},
	{Address: "2AQdpHJ2JpcEgPiATUXjQxA8QmafFegfQwSLWSprPicm", Name: "Kraken"},
	{Address: "88881Hu2jGMfCs9tMu5Rr7Ah7WBNBuXqde4nR5ZmKYYy", Name: "OKX Exchange"},
	{Address: "Eg5jqooyG6ySaXKbQUu4Lpvu2SqUPZrNkM4zXs9iUDLJ", Name: "Crypto.com"},
	{Address: "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T", Name: "Gate.io"},
	{Address: "AHB94zKUASftTdqgdfiDSdnPJHkEFgMvSaQtRQMwgY4c", Name: "KuCoin"},
	{Address: "GuxBSrv5jnSwwPepkqnmkM7YCBSakKanbnw4BKMdda4F", Name: "Bitfinex"},
	{Address: "EFnVqfWKNFuDhaJNHeYSYKp1aCwLhmqQzz3wvJeA8eJH", Name: "Bybit Cold Wallet"},
	{Address: "CXPeim1wQMkcTvEHx9QdhHe3uQreUdbxXJTLVAcWRbNt", Name: "Huobi Exchange"},
	{Address: "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So", Name: "Marinade Staked SOL"},
	{Address: "J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn", Name: "Jito Staked SOL"},
	{Address: "bSo13r4TkiE4KumL71LsHTPpL2euBYLFx6h9HP3piy1", Name: "BlazeStake Pool"},
	{Address: "stSo1mDQTq6uPGaarxydEjzvky3QNYuzJYGgUQBVS2M", Name: "Lido Staked SOL"},
	{Address: "7Np41oeYqPefeNQEHSv1UDhYrehxin3NStELsSKCT4K2", Name: "Orca Whirlpool"},
	{Address: "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8", Name: "Raydium AMM V4"},
	{Address: "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4", Name: "Jupiter Aggregator"},
	{Address: "ARjxTFWE1T1WsKJxKvG7ETkJ3kYEZLfC91wyYkNbwYXv", Name: "Jump Trading"},
	{Address: "3yUDo43vdnJKqHLJBzXgLCqzFBsDZJ2hAjacVKGVJMUr", Name: "Alameda Research"},
	{Address: "14kqryJUc9HKvgMUjN265z3vD9t8nFPAP7raQN3ePZBn", Name: "BitMEX"},
	{Address: "52C9T2T7JRojtxumYnYZhyUmrN7kqzvCLc4Ksvjk7TxD", Name: "Top Holder #1"},
	{Address: "8BseXT9EtoEhBTKFFYkwTnjKSUZwhtmdKY2Jrj8j45Rt", Name: "Top Holder #2"},
	{Address: "H6vpvhyv8nVeXsoE3GCyZ4q2EViENnzwTJzw5fe8LnFV", Name: "Top Holder #3"},
	{Address: "3KdEDGvJKBqfJXFNDhBUNcULyMiVnCthmVVggkmZp5Rj", Name: "Top Holder #4"},
	{Address: "7nnFLEKHMFgEQbYiE9U8xznbePEaFRjCULCwBrz9Y5Jx", Name: "Top Holder #5"},
	{Address: "FTX2jrw1p53AZSxFPPcrmVVGCvT7qcN9X5yLvF1sZYxf", Name: "FTX Estate Main"},
	{Address: "7VBa8Gid3Xh2MZvLxk5QD3nhCzFdAZnDm4a5vvNWsJnY", Name: "FTX/Alameda"},
	{Address: "Dv8bBNQQWdnoJ2SmJ2aVaDWi5wPgLNBhqBhzjmX6SgAm", Name: "FTX Estate"},
	{Address: "BWe3inxV4gYKBdqMHS8UxN7AwNkhqNAaAfhcphw5baKp", Name: "Celsius Network"},
	{Address: "8CvwxZ5A7RpKiDStjGMYkYt43NhcRPMtnKQQhdGX5PK9", Name: "Voyager Digital"},
	{Address: "63LfDmNb3MQ8mw9MtZ2To9bEA2M71kZUUGq5tiJxcqj9", Name: "Genesis Trading"},
	{Address: "E7horS2PiJYYZWpC6tanp3VgMupeAwyaWQMvWKaWvGXz", Name: "Three Arrows Capital"},
	{Address: "FWznbcNXWQuHTawe9RxvQ2LdCENssh12dsznf4RiouN5", Name: "Exchange Wallet"},
	{Address: "3sxVPrLXUgNRAaKcQgR9kMFTS5WnPpafAVkqJzX2E3UV", Name: "Alameda Research"},
	{Address: "nm1LeGksEwW3Kw9gSYH8vBqRbyZW4Fvr3EXfZH2bZxq", Name: "Unknown Whale 1"},
	{Address: "BLwKzyYLamhJRZbLTYde1BpAHBAb96hQhU7SqXLSGKa3", Name: "Unknown Whale 2"},
	{Address: "5tzFkiKscXHK5ZXCGbXZxdw7gTjjD1mBwuoFbhUvuAi9", Name: "Unknown Whale 3"},
	{Address: "9n4nbM75f5Ui33ZbPYXn59EwSgE8CGsHtAeTH5YFeJ9E", Name: "Unknown Whale 4"},
	{Address: "HBZY42BfG6PJqPQ8s1GuxVkVQvRYWvAyt9aDZzScsQyp", Name: "Unknown Whale 5"},
}

// DefaultTokens are widely held SPL tokens.
var DefaultTokens = []TokenCandidate{
	{Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Name: "USD Coin", Symbol: "USDC"},
	{Mint: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Name: "Tether", Symbol: "USDT"},
	{Mint: "7dHbWXmci3dT8UFYWYZweBLXgycu7Y3iL6trKn1Y7ARj", Name: "Lido Staked SOL", Symbol: "stSOL"},
	{Mint: "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So", Name: "Marinade Staked SOL", Symbol: "mSOL"},
	{Mint: "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", Name: "Bonk", Symbol: "BONK"},
	{Mint: "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", Name: "Jupiter", Symbol: "JUP"},
	{Mint: "EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm", Name: "Dogwifhat", Symbol: "WIF"},
	{Mint: "HZ1JovNiVvGrGNiiYvEozEVgZ58xaU3RKwX8eACQBCt3", Name: "Pyth Network", Symbol: "PYTH"},
}
