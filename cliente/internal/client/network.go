package client

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"DisplayForge/cliente/internal/assets"
	"DisplayForge/shared/protocol"

	"github.com/gorilla/websocket"
)

var ErrDisconnected = errors.New("cliente desconectado do servidor de assets")

// AssetClient busca assets brutos no servidor via websocket.
// Implementa assets.Source; pedidos concorrentes são correlacionados pelo ID.
type AssetClient struct {
	conn      *websocket.Conn
	url       string
	version   string
	connected bool
	mu        sync.RWMutex
	writeMu   sync.Mutex

	nextID  uint64
	pending map[uint64]chan protocol.AssetResponse

	// Parâmetros de conexão
	MaxRetries     int
	RetryDelay     time.Duration
	RequestTimeout time.Duration
}

func NewAssetClient(url, version string) *AssetClient {
	return &AssetClient{
		url:            url,
		version:        version,
		pending:        make(map[uint64]chan protocol.AssetResponse),
		MaxRetries:     10,
		RetryDelay:     2 * time.Second,
		RequestTimeout: 30 * time.Second,
	}
}

func (c *AssetClient) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	var conn *websocket.Conn
	var err error
	for i := 0; i < c.MaxRetries; i++ {
		log.Printf("[Rede] Tentativa de conexão %d/%d em %s...", i+1, c.MaxRetries, c.url)
		conn, _, err = dialer.Dial(c.url, nil)
		if err == nil {
			break
		}
		log.Printf("[Rede] Servidor ainda não está pronto: %v. Aguardando...", err)
		time.Sleep(c.RetryDelay)
	}

	if err != nil {
		log.Printf("[Rede] ERRO CRÍTICO após %d tentativas: %v", c.MaxRetries, err)
		return err
	}
	if conn == nil {
		return ErrDisconnected
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readLoop(conn)
	return nil
}

func (c *AssetClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Close encerra a conexão; pedidos pendentes falham com ErrDisconnected.
func (c *AssetClient) Close() error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// Open pede um asset ao servidor e aguarda a resposta.
func (c *AssetClient) Open(path string) ([]byte, error) {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil, ErrDisconnected
	}
	c.nextID++
	id := c.nextID
	ch := make(chan protocol.AssetResponse, 1)
	c.pending[id] = ch
	conn := c.conn
	c.mu.Unlock()

	frame := protocol.EncodeRequest(protocol.AssetRequest{ID: id, Version: c.version, Path: path})

	c.writeMu.Lock()
	err := conn.WriteMessage(websocket.BinaryMessage, frame)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		log.Printf("[Rede] Erro ao enviar pedido de %s: %v", path, err)
		return nil, fmt.Errorf("%w: %v", ErrDisconnected, err)
	}

	// Sem RequestTimeout o pedido espera até a resposta ou a queda da conexão
	var timeout <-chan time.Time
	if c.RequestTimeout > 0 {
		timer := time.NewTimer(c.RequestTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, ErrDisconnected
		}
		switch resp.Status {
		case protocol.StatusOK:
			return resp.Data, nil
		case protocol.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", assets.ErrNotFound, path)
		default:
			return nil, fmt.Errorf("servidor falhou em %s: %s", path, resp.Message)
		}
	case <-timeout:
		c.forget(id)
		return nil, fmt.Errorf("tempo esgotado aguardando %s", path)
	}
}

func (c *AssetClient) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *AssetClient) readLoop(conn *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		c.connected = false
		for id, ch := range c.pending {
			close(ch)
			delete(c.pending, id)
		}
		c.mu.Unlock()
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[Rede] Conexão perdida: %v", err)
			return
		}

		typ, payload, err := protocol.Decode(message)
		if err != nil {
			log.Printf("[Rede] Erro ao decodificar envelope: %v", err)
			continue
		}
		if typ != protocol.TypeAssetResponse {
			log.Printf("[Rede] Mensagem inesperada do tipo %d", typ)
			continue
		}

		resp, err := protocol.DecodeResponse(payload)
		if err != nil {
			log.Printf("[Rede] Erro ao decodificar resposta: %v", err)
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()

		if ok {
			ch <- resp
		}
	}
}
