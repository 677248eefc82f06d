
//此源码被清华学神尹成大魔王专业翻译分析并修改
//尹成QQ77025077
//尹成微信18510341407
//尹成所在QQ群721929980
//尹成邮箱 yinc13@mails.tsinghua.edu.cn
//尹成毕业于清华大学,微软区块链领域全球最有价值专家
//https://mvp.microsoft.com/zh-cn/PublicProfile/4033620
/*
版权所有IBM公司。保留所有权利。

SPDX许可证标识符：Apache-2.0
**/
package shim

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
	"github.com/ic-matcom/fabric-chaincode-go/protos/utils"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type state string

const (
	created     state = "created"     //启动状态
	established state = "established" //已建立连接
	ready       state = "ready"       //准备好接受请求
)

const tracerName = "github.com/ic-matcom/fabric-chaincode-go/core/chaincode/shim"

//ChaincodeStream是对等节点和链码实例之间的双向消息流。
//服务模式、客户端模式和进程内模式都提供这个接口。
type ChaincodeStream interface {
	Send(*pb.ChaincodeMessage) error
	Recv() (*pb.ChaincodeMessage, error)
}

//PeerChaincodeStream是链码主动连接对等节点时的客户端流
type PeerChaincodeStream interface {
	ChaincodeStream
	CloseSend() error
}

type messageAction func(handler *Handler, msg *pb.ChaincodeMessage) error

type transition struct {
	state   state
	msgType pb.ChaincodeMessage_Type
}

//stateTable是只读的（状态，消息类型）到处理动作的映射，
//表中没有的组合都是协议违规
var stateTable = map[transition]messageAction{
	{created, pb.ChaincodeMessage_REGISTERED}:    (*Handler).handleRegistered,
	{created, pb.ChaincodeMessage_KEEPALIVE}:     (*Handler).handleKeepalive,
	{established, pb.ChaincodeMessage_READY}:     (*Handler).handleReady,
	{established, pb.ChaincodeMessage_KEEPALIVE}: (*Handler).handleKeepalive,
	{ready, pb.ChaincodeMessage_INIT}:            (*Handler).handleTransaction,
	{ready, pb.ChaincodeMessage_TRANSACTION}:     (*Handler).handleTransaction,
	{ready, pb.ChaincodeMessage_RESPONSE}:        (*Handler).handleResponse,
	{ready, pb.ChaincodeMessage_ERROR}:           (*Handler).handleResponse,
	{ready, pb.ChaincodeMessage_KEEPALIVE}:       (*Handler).handleKeepalive,
}

//Handler是链码一侧的连接处理程序，每条流一个实例
type Handler struct {
//SIMM到对等GRPC串行化器。只在serialSend中使用
	serialLock sync.Mutex
//closed在读循环退出后置位，之后不再向流写入
	closed bool

	stateLock sync.RWMutex
	state     state

	name       string
	chatStream ChaincodeStream
	cc         Chaincode
//同一链码可以并行执行不同txid的交易，
//每个交易上下文的账本请求在队列中按序发送
	queue *messageQueue

	metrics     *HandlerMetrics
	tracer      trace.Tracer
	logger      *flogging.FabricLogger
	callTimeout time.Duration

//正在执行的交易
	inflight sync.WaitGroup
}

//HandlerOption用于定制Handler
type HandlerOption func(*Handler)

//WithCallTimeout为每个账本操作设置等待应答的上限，
//零表示一直等到应答或连接关闭
func WithCallTimeout(timeout time.Duration) HandlerOption {
	return func(h *Handler) { h.callTimeout = timeout }
}

func WithHandlerMetrics(m *HandlerMetrics) HandlerOption {
	return func(h *Handler) {
		if m != nil {
			h.metrics = m
		}
	}
}

//WithTracerProvider设置交易span使用的TracerProvider，
//默认使用otel的全局provider
func WithTracerProvider(tp trace.TracerProvider) HandlerOption {
	return func(h *Handler) {
		if tp != nil {
			h.tracer = tp.Tracer(tracerName)
		}
	}
}

func WithLogger(logger *flogging.FabricLogger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func shorttxid(txid string) string {
	if len(txid) < 8 {
		return txid
	}
	return txid[0:8]
}

//loggingPrefix返回交易日志和错误信息使用的前缀
func loggingPrefix(channelID, txid string) string {
	return fmt.Sprintf("[%s-%s]", channelID, shorttxid(txid))
}

//newChaincodeHandler为指定的流创建处理程序，初始状态为created
func newChaincodeHandler(peerChatStream ChaincodeStream, chaincode Chaincode, name string, opts ...HandlerOption) *Handler {
	h := &Handler{
		name:       name,
		chatStream: peerChatStream,
		cc:         chaincode,
		state:      created,
		metrics:    disabledHandlerMetrics(),
		tracer:     otel.GetTracerProvider().Tracer(tracerName),
		logger:     chaincodeLogger,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.queue = newMessageQueue(
		h.serialSend,
		h.metrics.ShimPendingOperations.With("chaincode", name),
		h.logger,
	)
	return h
}

//serialsend序列化msgs，以便grpc高兴
func (h *Handler) serialSend(msg *pb.ChaincodeMessage) error {
	h.serialLock.Lock()
	defer h.serialLock.Unlock()

	if h.closed {
		return errors.WithMessagef(ErrConnectionClosed, "[%s] cannot send %s", shorttxid(msg.Txid), msg.Type)
	}
	return h.chatStream.Send(msg)
}

//shutdown停止向流写入，让未完成的账本请求以cause失败，
//并等待所有交易goroutine退出
func (h *Handler) shutdown(cause error) {
	h.serialLock.Lock()
	h.closed = true
	h.serialLock.Unlock()

	h.queue.Close(cause)
	h.inflight.Wait()
}

//serialSendAsync与serialSend相同，但不阻塞读循环，
//错误只记录日志
func (h *Handler) serialSendAsync(msg *pb.ChaincodeMessage) {
	go func() {
		if err := h.serialSend(msg); err != nil {
			h.logger.Debugf("[%s] error sending %s: %s", shorttxid(msg.Txid), msg.Type, err)
		}
	}()
}

func (h *Handler) getState() state {
	h.stateLock.RLock()
	defer h.stateLock.RUnlock()
	return h.state
}

func (h *Handler) setState(s state) {
	h.stateLock.Lock()
	h.state = s
	h.stateLock.Unlock()
}

//register在读取第一条入站消息之前发送带有ChaincodeID的REGISTER
func (h *Handler) register() error {
	payload, err := proto.Marshal(&pb.ChaincodeID{Name: h.name})
	if err != nil {
		return errors.Wrap(err, "error marshalling chaincodeID during chaincode registration")
	}

	h.logger.Debugf("Registering.. sending %s", pb.ChaincodeMessage_REGISTER)
	msg := &pb.ChaincodeMessage{
		Type:      pb.ChaincodeMessage_REGISTER,
		Payload:   payload,
		Timestamp: ptypes.TimestampNow(),
	}
	if err := h.serialSend(msg); err != nil {
		return errors.WithMessage(err, "error sending chaincode REGISTER")
	}
	return nil
}

//handleMessage由读循环调用，按状态表分派消息。
//返回错误表示连接应当关闭。
func (h *Handler) handleMessage(msg *pb.ChaincodeMessage) error {
	current := h.getState()
	action, ok := stateTable[transition{current, msg.Type}]
	if !ok {
		return h.protocolViolation(msg, current)
	}
	return action(h, msg)
}

//protocolViolation回复ERROR并保持连接和状态不变
func (h *Handler) protocolViolation(msg *pb.ChaincodeMessage, current state) error {
	err := errors.Errorf("[%s] Chaincode handler cannot handle message (%s) with payload size (%d) while in state: %s",
		shorttxid(msg.Txid), msg.Type, len(msg.Payload), current)
	h.logger.Errorf("%s", err)

	errMsg := &pb.ChaincodeMessage{
		Type:      pb.ChaincodeMessage_ERROR,
		Payload:   []byte(err.Error()),
		Txid:      msg.Txid,
		ChannelId: msg.ChannelId,
	}
	if sendErr := h.serialSend(errMsg); sendErr != nil {
		return errors.WithMessagef(sendErr, "[%s] error sending %s", shorttxid(msg.Txid), pb.ChaincodeMessage_ERROR)
	}
	return nil
}

func (h *Handler) handleKeepalive(msg *pb.ChaincodeMessage) error {
	h.serialSendAsync(msg)
	return nil
}

func (h *Handler) handleRegistered(msg *pb.ChaincodeMessage) error {
	h.setState(established)
	h.logger.Debugf("Received %s, ready for invocations", pb.ChaincodeMessage_REGISTERED)
	return nil
}

func (h *Handler) handleReady(msg *pb.ChaincodeMessage) error {
	h.setState(ready)
	h.logger.Debugf("Received %s, handler is ready", pb.ChaincodeMessage_READY)
	return nil
}

//handleResponse把应答交给对应交易上下文的队首请求，
//没有等待中的请求时只记录日志
func (h *Handler) handleResponse(msg *pb.ChaincodeMessage) error {
	if err := h.queue.Resolve(txContextID(msg.ChannelId, msg.Txid), msg); err != nil {
		h.logger.Warningf("%s, ignoring message", err)
	}
	return nil
}

//handleTransaction在独立的goroutine中执行Init或Invoke，读循环不等待
func (h *Handler) handleTransaction(msg *pb.ChaincodeMessage) error {
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		h.executeTransaction(msg)
	}()
	return nil
}

func (h *Handler) executeTransaction(msg *pb.ChaincodeMessage) {
	startTime := time.Now()
	labels := []string{"type", msg.Type.String(), "channel", msg.ChannelId, "chaincode", h.name}
	h.metrics.ShimRequestsReceived.With(labels...).Add(1)

	ctx, span := h.tracer.Start(context.Background(), "chaincode/"+msg.Type.String(),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("tx.id", msg.Txid),
			attribute.String("channel.id", msg.ChannelId),
			attribute.String("chaincode.name", h.name),
		),
	)
	defer span.End()

	nextMsg := h.processTransaction(ctx, msg)
	success := nextMsg.Type == pb.ChaincodeMessage_COMPLETED

	h.logger.Debugf("[%s] %s handled, sending %s", shorttxid(msg.Txid), msg.Type, nextMsg.Type)
	if err := h.serialSend(nextMsg); err != nil {
		h.logger.Errorf("[%s] error sending %s: %s", shorttxid(msg.Txid), nextMsg.Type, err)
		span.RecordError(err)
		success = false
	}

	labels = append(labels, "success", strconv.FormatBool(success))
	h.metrics.ShimRequestsCompleted.With(labels...).Add(1)
	h.metrics.ShimRequestDuration.With(labels...).Observe(time.Since(startTime).Seconds())
}

//processTransaction解码输入和提案并调用链码，返回要发给对等节点的
//COMPLETED或ERROR消息
func (h *Handler) processTransaction(ctx context.Context, msg *pb.ChaincodeMessage) (nextMsg *pb.ChaincodeMessage) {
	span := trace.SpanFromContext(ctx)
	errorMessage := func(err error) *pb.ChaincodeMessage {
		h.logger.Errorf("%s", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &pb.ChaincodeMessage{
			Type:      pb.ChaincodeMessage_ERROR,
			Payload:   []byte(err.Error()),
			Txid:      msg.Txid,
			ChannelId: msg.ChannelId,
		}
	}

	method := "Invoke"
	if msg.Type == pb.ChaincodeMessage_INIT {
		method = "Init"
	}

	defer func() {
		if r := recover(); r != nil {
			nextMsg = errorMessage(errors.Errorf("%s chaincode %s() panicked: %v", loggingPrefix(msg.ChannelId, msg.Txid), method, r))
		}
	}()

	input := &pb.ChaincodeInput{}
	if err := proto.Unmarshal(msg.Payload, input); err != nil {
		return errorMessage(errors.Wrapf(err, "[%s] incorrect payload format", shorttxid(msg.Txid)))
	}

	proposal, err := utils.DecodeSignedProposal(msg.Proposal)
	if err != nil {
		return errorMessage(errors.WithMessagef(err, "[%s] failed to decode signed proposal", shorttxid(msg.Txid)))
	}

	stub := newChaincodeStub(ctx, h, msg.ChannelId, msg.Txid, input, proposal)

	var res pb.Response
	if msg.Type == pb.ChaincodeMessage_INIT {
		res = h.cc.Init(stub)
	} else {
		res = h.cc.Invoke(stub)
	}

	if res.Status == 0 {
		errMsg := fmt.Sprintf("%s Calling chaincode %s() has not called success or error.", loggingPrefix(msg.ChannelId, msg.Txid), method)
		h.logger.Error(errMsg)
		res = pb.Response{
			Status:  ERROR,
			Message: errMsg,
		}
	}

	h.logger.Debugf("%s Calling chaincode %s(), response status: %d", loggingPrefix(msg.ChannelId, msg.Txid), method, res.Status)
	span.SetAttributes(attribute.Int("response.status", int(res.Status)))
	if res.Status >= ERRORTHRESHOLD {
		h.logger.Infof("%s Calling chaincode %s() returned error response [%s]. Sending COMPLETED message back to peer",
			loggingPrefix(msg.ChannelId, msg.Txid), method, res.Message)
		span.SetStatus(codes.Error, res.Message)
	}

	resBytes, err := proto.Marshal(&res)
	if err != nil {
		return errorMessage(errors.Wrapf(err, "[%s] failed to marshal response", shorttxid(msg.Txid)))
	}

	return &pb.ChaincodeMessage{
		Type:           pb.ChaincodeMessage_COMPLETED,
		Payload:        resBytes,
		Txid:           msg.Txid,
		ChannelId:      msg.ChannelId,
		ChaincodeEvent: stub.chaincodeEvent,
	}
}

//callPeerWithChaincodeMsg把请求放入交易上下文队列并等待应答
func (h *Handler) callPeerWithChaincodeMsg(ctx context.Context, msg *pb.ChaincodeMessage) (*pb.ChaincodeMessage, error) {
	trace.SpanFromContext(ctx).AddEvent(msg.Type.String())

	contextID := txContextID(msg.ChannelId, msg.Txid)
	respc := h.queue.Enqueue(contextID, msg)
	if h.callTimeout <= 0 {
		r := <-respc
		return r.msg, r.err
	}

	timer := time.NewTimer(h.callTimeout)
	defer timer.Stop()
	select {
	case r := <-respc:
		return r.msg, r.err
	case <-timer.C:
		h.queue.Cancel(contextID, respc)
		return nil, errors.Errorf("[%s] timeout expired while waiting for response to %s after %s", shorttxid(msg.Txid), msg.Type, h.callTimeout)
	}
}

//request发送一次账本请求并返回RESPONSE的负载。对等节点返回的
//ERROR原样作为错误交给链码。
func (h *Handler) request(ctx context.Context, msgType pb.ChaincodeMessage_Type, payload proto.Message, channelID, txid string) ([]byte, error) {
	payloadBytes, err := proto.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "[%s] failed to marshal %s payload", shorttxid(txid), msgType)
	}

	msg := &pb.ChaincodeMessage{Type: msgType, Payload: payloadBytes, Txid: txid, ChannelId: channelID}
	h.logger.Debugf("[%s] Sending %s", shorttxid(txid), msgType)

	resp, err := h.callPeerWithChaincodeMsg(ctx, msg)
	if err != nil {
		if resp != nil && resp.Type == pb.ChaincodeMessage_ERROR {
			h.logger.Errorf("[%s] %s failed: %s", shorttxid(txid), msgType, err)
			return nil, err
		}
		return nil, errors.WithMessagef(err, "[%s] error sending %s", shorttxid(txid), msgType)
	}

	h.logger.Debugf("[%s] Received %s for %s", shorttxid(txid), resp.Type, msgType)
	return resp.Payload, nil
}

func (h *Handler) handleGetState(ctx context.Context, collection, key, channelID, txid string) ([]byte, error) {
	return h.request(ctx, pb.ChaincodeMessage_GET_STATE, &pb.GetState{Collection: collection, Key: key}, channelID, txid)
}

func (h *Handler) handleGetStateMetadata(ctx context.Context, collection, key, channelID, txid string) (map[string][]byte, error) {
	payload, err := h.request(ctx, pb.ChaincodeMessage_GET_STATE_METADATA, &pb.GetStateMetadata{Collection: collection, Key: key}, channelID, txid)
	if err != nil {
		return nil, err
	}

	mdResult := &pb.StateMetadataResult{}
	if err := proto.Unmarshal(payload, mdResult); err != nil {
		return nil, errors.Wrapf(err, "[%s] GetStateMetadataResponse unmarshall error", shorttxid(txid))
	}
	metadata := make(map[string][]byte)
	for _, md := range mdResult.Entries {
		metadata[md.Metakey] = md.Value
	}
	return metadata, nil
}

func (h *Handler) handlePutState(ctx context.Context, collection, key string, value []byte, channelID, txid string) error {
	_, err := h.request(ctx, pb.ChaincodeMessage_PUT_STATE, &pb.PutState{Collection: collection, Key: key, Value: value}, channelID, txid)
	return err
}

func (h *Handler) handlePutStateMetadataEntry(ctx context.Context, collection, key, metakey string, metadata []byte, channelID, txid string) error {
	payload := &pb.PutStateMetadata{
		Collection: collection,
		Key:        key,
		Metadata:   &pb.StateMetadata{Metakey: metakey, Value: metadata},
	}
	_, err := h.request(ctx, pb.ChaincodeMessage_PUT_STATE_METADATA, payload, channelID, txid)
	return err
}

func (h *Handler) handleDelState(ctx context.Context, collection, key, channelID, txid string) error {
	_, err := h.request(ctx, pb.ChaincodeMessage_DEL_STATE, &pb.DelState{Collection: collection, Key: key}, channelID, txid)
	return err
}

func (h *Handler) queryResponse(msgType pb.ChaincodeMessage_Type, payload []byte, txid string) (*pb.QueryResponse, error) {
	resp := &pb.QueryResponse{}
	if err := proto.Unmarshal(payload, resp); err != nil {
		return nil, errors.Wrapf(err, "[%s] unmarshal error for %s response", shorttxid(txid), msgType)
	}
	return resp, nil
}

func (h *Handler) handleGetStateByRange(ctx context.Context, collection, startKey, endKey string, metadata []byte, channelID, txid string) (*pb.QueryResponse, error) {
	payload := &pb.GetStateByRange{StartKey: startKey, EndKey: endKey, Collection: collection, Metadata: metadata}
	resp, err := h.request(ctx, pb.ChaincodeMessage_GET_STATE_BY_RANGE, payload, channelID, txid)
	if err != nil {
		return nil, err
	}
	return h.queryResponse(pb.ChaincodeMessage_GET_STATE_BY_RANGE, resp, txid)
}

func (h *Handler) handleQueryStateNext(ctx context.Context, id, channelID, txid string) (*pb.QueryResponse, error) {
	resp, err := h.request(ctx, pb.ChaincodeMessage_QUERY_STATE_NEXT, &pb.QueryStateNext{Id: id}, channelID, txid)
	if err != nil {
		return nil, err
	}
	return h.queryResponse(pb.ChaincodeMessage_QUERY_STATE_NEXT, resp, txid)
}

func (h *Handler) handleQueryStateClose(ctx context.Context, id, channelID, txid string) (*pb.QueryResponse, error) {
	resp, err := h.request(ctx, pb.ChaincodeMessage_QUERY_STATE_CLOSE, &pb.QueryStateClose{Id: id}, channelID, txid)
	if err != nil {
		return nil, err
	}
	return h.queryResponse(pb.ChaincodeMessage_QUERY_STATE_CLOSE, resp, txid)
}

func (h *Handler) handleGetQueryResult(ctx context.Context, collection, query string, metadata []byte, channelID, txid string) (*pb.QueryResponse, error) {
	payload := &pb.GetQueryResult{Query: query, Collection: collection, Metadata: metadata}
	resp, err := h.request(ctx, pb.ChaincodeMessage_GET_QUERY_RESULT, payload, channelID, txid)
	if err != nil {
		return nil, err
	}
	return h.queryResponse(pb.ChaincodeMessage_GET_QUERY_RESULT, resp, txid)
}

func (h *Handler) handleGetHistoryForKey(ctx context.Context, key, channelID, txid string) (*pb.QueryResponse, error) {
	resp, err := h.request(ctx, pb.ChaincodeMessage_GET_HISTORY_FOR_KEY, &pb.GetHistoryForKey{Key: key}, channelID, txid)
	if err != nil {
		return nil, err
	}
	return h.queryResponse(pb.ChaincodeMessage_GET_HISTORY_FOR_KEY, resp, txid)
}

//handleInvokeChaincode在同一交易上下文中调用另一个链码。
//被调链码的结果装在COMPLETED消息里返回。
func (h *Handler) handleInvokeChaincode(ctx context.Context, chaincodeName string, args [][]byte, channelID, txid string) pb.Response {
	payload := &pb.ChaincodeSpec{ChaincodeId: &pb.ChaincodeID{Name: chaincodeName}, Input: &pb.ChaincodeInput{Args: args}}
	respPayload, err := h.request(ctx, pb.ChaincodeMessage_INVOKE_CHAINCODE, payload, channelID, txid)
	if err != nil {
		return Error(err.Error())
	}

	respMsg := &pb.ChaincodeMessage{}
	if err := proto.Unmarshal(respPayload, respMsg); err != nil {
		return Error(errors.Wrapf(err, "[%s] failed to unmarshal chaincode message", shorttxid(txid)).Error())
	}
	if respMsg.Type != pb.ChaincodeMessage_COMPLETED {
		h.logger.Errorf("[%s] %s invoking %s: %s", shorttxid(txid), respMsg.Type, chaincodeName, respMsg.Payload)
		return Error(string(respMsg.Payload))
	}

	res := &pb.Response{}
	if err := proto.Unmarshal(respMsg.Payload, res); err != nil {
		return Error(errors.Wrapf(err, "[%s] failed to unmarshal response", shorttxid(txid)).Error())
	}
	return *res
}
